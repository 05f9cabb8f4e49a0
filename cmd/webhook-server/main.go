// Package main webhook fulfillment 服务入口
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secbot-fulfillment/internal/config"
	"secbot-fulfillment/internal/fulfillment/server"
	"secbot-fulfillment/internal/shared/cache"
	"secbot-fulfillment/internal/shared/infra"
	"secbot-fulfillment/internal/shared/storage/mongostore"
)

func main() {
	log.Println("Starting webhook server...")

	cfg := config.Load()
	log.Printf("Loaded %s", cfg)

	store, err := mongostore.NewStore(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()

	// Redis 仅用作概念查询缓存，连不上就降级为无缓存继续跑
	var conceptCache cache.ConceptCache = cache.NewNoOpCache()
	if cfg.RedisEnabled {
		redisInfra, err := infra.NewRedisInfra(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Redis unavailable, concept cache disabled: %v", err)
		} else {
			defer redisInfra.Close()
			conceptCache = redisInfra.ConceptCache
			log.Println("Redis concept cache enabled")
		}
	}

	h := server.NewHandler(store, conceptCache, server.Options{
		DefaultProjectID: cfg.DialogflowProjectID,
		Quiz:             cfg.Quiz,
		List:             cfg.List,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Webhook server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
