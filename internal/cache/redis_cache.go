package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"scanbridge/internal/domain"
)

type RedisProductLookupCache struct {
	client *redis.Client
}

func NewRedisProductLookupCache(addr string, password string, db int) *RedisProductLookupCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisProductLookupCache{client: client}
}

func (c *RedisProductLookupCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisProductLookupCache) Close() error {
	return c.client.Close()
}

func (c *RedisProductLookupCache) Get(ctx context.Context, code string) (*domain.Product, bool, error) {
	val, err := c.client.Get(ctx, lookupKey(code)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var product domain.Product
	if err := json.Unmarshal([]byte(val), &product); err != nil {
		return nil, false, err
	}
	return &product, true, nil
}

func (c *RedisProductLookupCache) Set(ctx context.Context, code string, product *domain.Product, ttl time.Duration) error {
	if product == nil {
		return nil
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, lookupKey(code), payload, ttl).Err()
}

func lookupKey(code string) string {
	return "lookup:" + code
}
