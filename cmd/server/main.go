package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/ethanmarsh/teamline/internal/config"
	"github.com/ethanmarsh/teamline/internal/server"
	"github.com/redis/go-redis/v9"
)

func main() {
	var cfg config.Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := config.LoadAndValidate(path)
		if err != nil {
			log.Fatalf("Failed to load config from %s: %v", path, err)
		}
		cfg = *loaded
		log.Printf("Loaded config from %s", path)
	} else {
		cfg = config.Default()
	}

	opts := []server.Option{server.WithLimits(cfg.Limits)}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		log.Printf("Connected to Redis at %s", cfg.Redis.Addr)
		opts = append(opts, server.WithRedis(rdb))
	}

	srv := server.New(cfg.Server.ListenAddr, opts...)
	log.Printf("Starting teamline server on %s", cfg.Server.ListenAddr)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
