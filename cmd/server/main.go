package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/grandcat/zeroconf"

	"scanbridge/internal/cache"
	"scanbridge/internal/cart"
	"scanbridge/internal/config"
	"scanbridge/internal/httpapi"
	"scanbridge/internal/service"
	"scanbridge/internal/store"
	"scanbridge/internal/store/memory"
	pgstore "scanbridge/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 3)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		log.Println("repository: in-memory")
	}

	lookups := cache.ProductLookupCache(cache.NoopProductLookupCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisProductLookupCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop lookup cache", err)
		} else {
			lookups = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("lookup cache: redis")
		}
	} else {
		log.Println("lookup cache: noop")
	}

	hub := httpapi.NewHub()
	closers = append(closers, hub.Close)

	adapter := cart.NewAdapter(repo, lookups, cfg.LookupCacheTTL())
	svc := service.New(repo, adapter, hub, service.Config{
		RepeatWindow:    cfg.RepeatWindow(),
		HIDInterKeyGap:  cfg.HIDInterKeyGap(),
		HIDFlushTimeout: cfg.HIDFlushTimeout(),
	})
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, hub, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var mdns *zeroconf.Server
	if cfg.MDNSEnabled {
		mdns = registerMDNS(cfg)
	}

	go func() {
		log.Printf("scan bridge listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if mdns != nil {
		mdns.Shutdown()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// registerMDNS announces the service so scanner UIs on the LAN can find the
// bridge without manual configuration.
func registerMDNS(cfg config.Config) *zeroconf.Server {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Printf("mDNS disabled: invalid port %q", cfg.Port)
		return nil
	}
	mdns, err := zeroconf.Register(
		cfg.InstanceName,
		"_scanbridge._tcp",
		"local.",
		port,
		[]string{
			"version=1.0",
			"protocol=websocket",
			"path=/ws",
		},
		nil,
	)
	if err != nil {
		log.Printf("mDNS registration failed: %v", err)
		return nil
	}
	log.Printf("mDNS service registered: _scanbridge._tcp on port %d", port)
	return mdns
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
