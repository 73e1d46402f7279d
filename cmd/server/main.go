package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inboxpilot/mailmetrics/internal/analytics"
	"github.com/inboxpilot/mailmetrics/internal/api"
	"github.com/inboxpilot/mailmetrics/internal/config"
	"github.com/inboxpilot/mailmetrics/internal/repository/postgres"
	"github.com/inboxpilot/mailmetrics/internal/storage"
	"github.com/inboxpilot/mailmetrics/internal/warehouse"
)

func main() {
	log.Println("MailMetrics analytics server starting")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Record storage: DynamoDB in production, in-memory for local runs.
	source, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("[Storage] Record source initialized (type=%s)", cfg.Storage.Type)

	// Warehouse archive extends queries past the DynamoDB retention window.
	if cfg.Warehouse.Enabled {
		wh, err := warehouse.NewClient(cfg.Warehouse)
		if err != nil {
			log.Fatalf("Failed to initialize warehouse: %v", err)
		}
		defer wh.Close()
		if err := wh.Ping(ctx); err != nil {
			log.Printf("[Warehouse] Ping failed, archive queries may not work: %v", err)
		}
		source = storage.NewTieredSource(source, wh, storage.RetentionDays)
		log.Println("[Warehouse] Archive tier enabled for historical queries")
	}

	// Redis read-through cache over raw record fetches.
	if cfg.Cache.Enabled && cfg.Cache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Invalid redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("[Cache] Redis unreachable, running without cache: %v", err)
		} else {
			source = storage.NewCachedSource(source, redisClient, cfg.Cache.TTL())
			log.Printf("[Cache] Redis cache enabled (ttl=%s)", cfg.Cache.TTL())
		}
	}

	svc := analytics.NewService(source)
	handlers := api.NewHandlers(svc)

	// Tenant registry is optional; analytics endpoints work without it.
	if cfg.Registry.Enabled && cfg.Registry.DatabaseURL != "" {
		db, err := postgres.Open(cfg.Registry.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to tenant registry: %v", err)
		}
		defer db.Close()
		handlers.SetTenantRepo(postgres.NewTenantRepo(db))
		log.Println("[Registry] Tenant registry connected")
	}

	server := api.NewServer(cfg.Server, handlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
