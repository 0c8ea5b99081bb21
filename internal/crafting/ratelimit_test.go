package crafting

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_CapWithinWindow(t *testing.T) {
	limiter := NewMemoryLimiter(10, time.Hour)
	defer limiter.Close()

	playerID := uuid.New()
	now := time.Now()

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(context.Background(), playerID, now)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := limiter.Allow(context.Background(), playerID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, allowed, "11th request within the window must be rejected")
}

func TestMemoryLimiter_WindowReset(t *testing.T) {
	limiter := NewMemoryLimiter(2, time.Hour)
	defer limiter.Close()

	playerID := uuid.New()
	now := time.Now()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(context.Background(), playerID, now)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := limiter.Allow(context.Background(), playerID, now)
	require.NoError(t, err)
	require.False(t, allowed)

	// Once the window elapses the counter starts fresh
	allowed, err = limiter.Allow(context.Background(), playerID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter_RejectionDoesNotConsume(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Hour)
	defer limiter.Close()

	playerID := uuid.New()
	now := time.Now()

	allowed, err := limiter.Allow(context.Background(), playerID, now)
	require.NoError(t, err)
	require.True(t, allowed)

	// Rejections must not advance the counter past the cap
	for i := 0; i < 5; i++ {
		allowed, err = limiter.Allow(context.Background(), playerID, now)
		require.NoError(t, err)
		require.False(t, allowed)
	}

	w := limiter.players[playerID]
	assert.Equal(t, 1, w.count)
}

func TestMemoryLimiter_PlayersIsolated(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Hour)
	defer limiter.Close()

	now := time.Now()

	allowed, err := limiter.Allow(context.Background(), uuid.New(), now)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), uuid.New(), now)
	require.NoError(t, err)
	assert.True(t, allowed, "a second player must have an independent window")
}

func TestMemoryLimiter_ConcurrentSamePlayer(t *testing.T) {
	limiter := NewMemoryLimiter(10, time.Hour)
	defer limiter.Close()

	playerID := uuid.New()
	now := time.Now()

	var allowed int64
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := limiter.Allow(context.Background(), playerID, now)
			if ok {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), allowed, "concurrent requests must never exceed the cap")
}
