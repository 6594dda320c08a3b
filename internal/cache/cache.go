package cache

import (
	"context"
	"time"

	"scanbridge/internal/domain"
)

// ProductLookupCache short-circuits repeated catalog lookups for the same
// scanned code. Checkout lanes scan the same handful of products all day, so
// a small TTL cache keeps the hot path off the database.
type ProductLookupCache interface {
	Get(ctx context.Context, code string) (*domain.Product, bool, error)
	Set(ctx context.Context, code string, product *domain.Product, ttl time.Duration) error
}

type NoopProductLookupCache struct{}

func (NoopProductLookupCache) Get(_ context.Context, _ string) (*domain.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductLookupCache) Set(_ context.Context, _ string, _ *domain.Product, _ time.Duration) error {
	return nil
}
