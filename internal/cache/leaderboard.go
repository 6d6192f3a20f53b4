package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"parrainage-bot/internal/models"
)

const (
	keyPrefix     = "leaderboard:"
	generationKey = keyPrefix + "generation"
)

type LeaderboardSource interface {
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// Leaderboard is a read-through Redis cache in front of the ledger's ranking.
// Redis errors are logged and the source is used directly; a nil Redis client
// disables caching.
//
// Entries are keyed by a generation counter that Invalidate increments, so a
// snapshot read before an invalidation is stored under a generation nobody reads.
type Leaderboard struct {
	Source LeaderboardSource
	Redis  *redis.Client
	TTL    time.Duration
}

func NewLeaderboard(src LeaderboardSource, rdb *redis.Client, ttl time.Duration) *Leaderboard {
	return &Leaderboard{Source: src, Redis: rdb, TTL: ttl}
}

func (c *Leaderboard) Get(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if c.Redis == nil || c.TTL <= 0 {
		return c.Source.Leaderboard(ctx, limit)
	}

	gen, err := c.Redis.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("Leaderboard cache read failed: %v", err)
		return c.Source.Leaderboard(ctx, limit)
	}

	key := entryKey(gen, limit)
	raw, err := c.Redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entries []models.LeaderboardEntry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		log.Printf("Discarding corrupt leaderboard cache entry %s", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("Leaderboard cache read failed: %v", err)
	}

	entries, err := c.Source.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(entries); err == nil {
		if err := c.Redis.Set(ctx, key, raw, c.TTL).Err(); err != nil {
			log.Printf("Leaderboard cache write failed: %v", err)
		}
	}
	return entries, nil
}

// Invalidate makes every cached ranking unreachable. Called after each successful
// credit and each new registration; old entries expire with their TTL.
func (c *Leaderboard) Invalidate(ctx context.Context) {
	if c.Redis == nil {
		return
	}
	if err := c.Redis.Incr(ctx, generationKey).Err(); err != nil {
		log.Printf("Leaderboard cache invalidation failed: %v", err)
	}
}

func entryKey(gen int64, limit int) string {
	return fmt.Sprintf("%s%d:%d", keyPrefix, gen, limit)
}
