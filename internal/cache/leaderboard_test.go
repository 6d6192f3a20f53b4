package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"parrainage-bot/internal/models"
)

type countingSource struct {
	entries []models.LeaderboardEntry
	err     error
	calls   int
	// during runs inside Leaderboard, before the result is returned.
	during func()
}

func (s *countingSource) Leaderboard(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	s.calls++
	if s.during != nil {
		s.during()
	}
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.entries) {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

func setup(t *testing.T) (*Leaderboard, *countingSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	src := &countingSource{entries: []models.LeaderboardEntry{
		{UserID: 1, Username: "alice", Score: 3},
		{UserID: 2, DisplayName: "Bob", Score: 1},
	}}
	return NewLeaderboard(src, rdb, time.Minute), src, mr
}

func TestGetCachesResult(t *testing.T) {
	c, src, mr := setup(t)
	ctx := context.Background()

	first, err := c.Get(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Get(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}

	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
	if len(second) != len(first) || second[0] != first[0] || second[1] != first[1] {
		t.Errorf("cached = %+v, want %+v", second, first)
	}
	if ttl := mr.TTL("leaderboard:0:10"); ttl != time.Minute {
		t.Errorf("TTL = %s, want 1m", ttl)
	}

	// Different limits are cached separately.
	if _, err := c.Get(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
}

func TestInvalidate(t *testing.T) {
	c, src, _ := setup(t)
	ctx := context.Background()

	_, _ = c.Get(ctx, 10)
	_, _ = c.Get(ctx, 1)

	c.Invalidate(ctx)

	_, _ = c.Get(ctx, 10)
	_, _ = c.Get(ctx, 1)
	if src.calls != 4 {
		t.Errorf("source calls = %d, want 4", src.calls)
	}

	_, _ = c.Get(ctx, 10)
	if src.calls != 4 {
		t.Errorf("source calls = %d after refill, want 4", src.calls)
	}
}

func TestSnapshotReadBeforeInvalidateIsNotServed(t *testing.T) {
	c, src, _ := setup(t)
	ctx := context.Background()

	// A credit commits and invalidates while the first Get is reading the source.
	src.during = func() {
		src.during = nil
		c.Invalidate(ctx)
	}
	if _, err := c.Get(ctx, 10); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Get(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2: snapshot from before the invalidation was served", src.calls)
	}
}

func TestRedisFailureFallsBack(t *testing.T) {
	c, src, mr := setup(t)
	mr.Close()

	got, err := c.Get(context.Background(), 10)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 || src.calls != 1 {
		t.Errorf("Get() = %+v after %d calls", got, src.calls)
	}
	c.Invalidate(context.Background())
}

func TestCorruptEntryIsReplaced(t *testing.T) {
	c, src, mr := setup(t)
	mr.Set("leaderboard:0:10", "not json")

	got, err := c.Get(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || src.calls != 1 {
		t.Errorf("Get() = %+v after %d calls", got, src.calls)
	}
}

func TestSourceErrorIsReturned(t *testing.T) {
	c, src, mr := setup(t)
	src.err = errors.New("db down")

	if _, err := c.Get(context.Background(), 10); !errors.Is(err, src.err) {
		t.Errorf("Get() error = %v, want %v", err, src.err)
	}
	if mr.Exists("leaderboard:0:10") {
		t.Error("failed lookup was cached")
	}
}

func TestNilRedisPassesThrough(t *testing.T) {
	src := &countingSource{entries: []models.LeaderboardEntry{{UserID: 1}}}
	c := NewLeaderboard(src, nil, time.Minute)

	_, _ = c.Get(context.Background(), 10)
	_, _ = c.Get(context.Background(), 10)
	c.Invalidate(context.Background())

	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
}
