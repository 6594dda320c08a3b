package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	AuthSecret            string
	AccessTokenTTLMinutes int
	RepeatWindowMs        int
	HIDInterKeyGapMs      int
	HIDFlushTimeoutMs     int
	LookupCacheTTLSeconds int
	MDNSEnabled           bool
	InstanceName          string
}

func Load() Config {
	// Optional .env for development; real deployments use the environment.
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL := getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 480)
	repeatWindow := getEnvInt("REPEAT_WINDOW_MS", 2000)
	interKeyGap := getEnvInt("HID_INTERKEY_GAP_MS", 50)
	flushTimeout := getEnvInt("HID_FLUSH_TIMEOUT_MS", 100)
	cacheTTL := getEnvInt("LOOKUP_CACHE_TTL_SECONDS", 30)

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		RepeatWindowMs:        repeatWindow,
		HIDInterKeyGapMs:      interKeyGap,
		HIDFlushTimeoutMs:     flushTimeout,
		LookupCacheTTLSeconds: cacheTTL,
		MDNSEnabled:           strings.EqualFold(getEnv("MDNS_ENABLED", "true"), "true"),
		InstanceName:          getEnv("INSTANCE_NAME", "scanbridge"),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) RepeatWindow() time.Duration {
	return time.Duration(c.RepeatWindowMs) * time.Millisecond
}

func (c Config) HIDInterKeyGap() time.Duration {
	return time.Duration(c.HIDInterKeyGapMs) * time.Millisecond
}

func (c Config) HIDFlushTimeout() time.Duration {
	return time.Duration(c.HIDFlushTimeoutMs) * time.Millisecond
}

func (c Config) LookupCacheTTL() time.Duration {
	return time.Duration(c.LookupCacheTTLSeconds) * time.Second
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || val < 1 {
		return fallback
	}
	return val
}
