package database

import (
	"context"
	"fmt"
	"log"

	"parrainage-bot/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a nil client when Redis is disabled in cfg.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.RedisEnabled() {
		log.Println("Redis disabled, leaderboard cache and announcement de-duplication are off")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("Connected to Redis")
	return rdb, nil
}

// ConnectRedisOptional is ConnectRedis for callers that can run without Redis: a
// failed connection is logged and a nil client returned.
func ConnectRedisOptional(ctx context.Context, cfg *config.Config) *redis.Client {
	rdb, err := ConnectRedis(ctx, cfg)
	if err != nil {
		log.Printf("Redis unavailable, continuing without leaderboard cache and announcement de-duplication: %v", err)
		return nil
	}
	return rdb
}
