package crafting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tapcraft/crafting-service/pkg/logger"
	"github.com/tapcraft/crafting-service/pkg/metrics"
	"go.uber.org/zap"
)

// Fixed crafting rate limit: at most MaxCraftsPerWindow successful limiter
// passes per player per CraftWindow. These are deliberate constants, not
// configuration. The fixed-window algorithm admits a burst of up to twice the
// cap across a window boundary; that imprecision is accepted in exchange for
// a single atomic counter per player.
const (
	MaxCraftsPerWindow = 10
	CraftWindow        = time.Hour
)

// Limiter bounds how many crafts a player may start per window. Allow
// consumes one slot when it returns true; a false return consumes nothing.
type Limiter interface {
	Allow(ctx context.Context, playerID uuid.UUID, now time.Time) (bool, error)
}

type craftWindow struct {
	start time.Time
	count int
}

// MemoryLimiter is a fixed-window limiter backed by an in-process map.
// Suitable for single-replica deployments and tests; multi-replica
// deployments should use RedisLimiter so all replicas share one window.
type MemoryLimiter struct {
	mu      sync.Mutex
	players map[uuid.UUID]*craftWindow
	max     int
	window  time.Duration

	cleanupTicker *time.Ticker
	done          chan struct{}
}

// NewMemoryLimiter creates an in-memory limiter and starts a background
// eviction loop for idle player entries. Call Close to stop it.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		players:       make(map[uuid.UUID]*craftWindow),
		max:           max,
		window:        window,
		cleanupTicker: time.NewTicker(window),
		done:          make(chan struct{}),
	}

	go l.evictLoop()

	return l
}

// Allow implements Limiter. The whole check-and-increment runs under one
// lock so two concurrent requests from the same player cannot both pass the
// cap.
func (l *MemoryLimiter) Allow(_ context.Context, playerID uuid.UUID, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.players[playerID]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &craftWindow{start: now}
		l.players[playerID] = w
	}

	if w.count >= l.max {
		return false, nil
	}

	w.count++
	return true, nil
}

// evictLoop drops entries whose window elapsed long ago. Memory hygiene
// only; Allow resets stale windows on its own.
func (l *MemoryLimiter) evictLoop() {
	for {
		select {
		case <-l.done:
			return
		case <-l.cleanupTicker.C:
			l.mu.Lock()
			cutoff := time.Now().Add(-2 * l.window)
			for id, w := range l.players {
				if w.start.Before(cutoff) {
					delete(l.players, id)
				}
			}
			active := len(l.players)
			l.mu.Unlock()

			logger.Debug("Craft limiter eviction completed", zap.Int("active_players", active))
		}
	}
}

// Close stops the eviction loop.
func (l *MemoryLimiter) Close() {
	l.cleanupTicker.Stop()
	close(l.done)
}

// RedisLimiter is a fixed-window limiter keyed per player and window bucket
// in Redis, so the cap holds across service replicas. The INCR is the atomic
// check-and-increment; a rejected request still bumps the stored counter
// past the cap, which is harmless because only the <= max comparison decides.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		max:    max,
		window: window,
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, playerID uuid.UUID, now time.Time) (bool, error) {
	bucket := now.Truncate(l.window).Unix()
	key := fmt.Sprintf("craft:limit:%s:%d", playerID, bucket)

	start := time.Now()
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		metrics.RecordRedisOperation("incr", "error", time.Since(start).Seconds())
		return false, fmt.Errorf("failed to increment craft counter: %w", err)
	}
	metrics.RecordRedisOperation("incr", "success", time.Since(start).Seconds())

	if count == 1 {
		// Keep the key a little past the window so a clock-skewed reader
		// never sees it vanish early.
		if err := l.client.Expire(ctx, key, l.window+time.Minute).Err(); err != nil {
			return false, fmt.Errorf("failed to set craft counter ttl: %w", err)
		}
	}

	return count <= int64(l.max), nil
}
