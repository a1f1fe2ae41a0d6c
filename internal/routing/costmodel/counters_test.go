// internal/routing/costmodel/counters_test.go
package costmodel

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "routing-engine/internal/common/errors"
)

// ==========================
// Memory Counters
// ==========================

func TestMemoryCounters_IncrementAndSnapshot(t *testing.T) {
	counters := NewMemoryCounters()
	ctx := context.Background()

	require.NoError(t, counters.Increment(ctx, "code_completion"))
	require.NoError(t, counters.Increment(ctx, "code_completion"))
	require.NoError(t, counters.Increment(ctx, "bug_detection"))

	snapshot, err := counters.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), snapshot.CountsByType["code_completion"])
	assert.Equal(t, int64(1), snapshot.CountsByType["bug_detection"])
	assert.Equal(t, int64(3), snapshot.Total())
	assert.False(t, snapshot.WindowStart.IsZero())
}

// Under concurrent load every completed increment must be counted exactly
// once.
func TestMemoryCounters_ConcurrentIncrements(t *testing.T) {
	counters := NewMemoryCounters()
	ctx := context.Background()

	const (
		goroutines = 50
		perWorker  = 100
	)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = counters.Increment(ctx, "code_completion")
			}
		}()
	}
	wg.Wait()

	snapshot, err := counters.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*perWorker), snapshot.CountsByType["code_completion"])
}

func TestMemoryCounters_Reset(t *testing.T) {
	counters := NewMemoryCounters()
	ctx := context.Background()

	require.NoError(t, counters.Increment(ctx, "code_completion"))
	require.NoError(t, counters.Reset(ctx))

	snapshot, err := counters.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, snapshot.Total())
}

// Snapshot hands out a copy; mutating it must not leak back into the window.
func TestMemoryCounters_SnapshotIsolation(t *testing.T) {
	counters := NewMemoryCounters()
	ctx := context.Background()

	require.NoError(t, counters.Increment(ctx, "code_completion"))

	first, err := counters.Snapshot(ctx)
	require.NoError(t, err)
	first.CountsByType["code_completion"] = 999

	second, err := counters.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.CountsByType["code_completion"])
}

// ==========================
// Redis Counters
// ==========================

func createMiniredisCounters(t *testing.T) (*RedisCounters, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCounters(client), mr
}

func TestRedisCounters_IncrementAndSnapshot(t *testing.T) {
	counters, _ := createMiniredisCounters(t)
	ctx := context.Background()

	require.NoError(t, counters.Increment(ctx, "code_completion"))
	require.NoError(t, counters.Increment(ctx, "code_completion"))
	require.NoError(t, counters.Increment(ctx, "security_audit"))

	snapshot, err := counters.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), snapshot.CountsByType["code_completion"])
	assert.Equal(t, int64(1), snapshot.CountsByType["security_audit"])
	assert.False(t, snapshot.WindowStart.IsZero())
}

func TestRedisCounters_Reset(t *testing.T) {
	counters, _ := createMiniredisCounters(t)
	ctx := context.Background()

	require.NoError(t, counters.Increment(ctx, "code_completion"))
	require.NoError(t, counters.Reset(ctx))

	snapshot, err := counters.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.CountsByType)
}

func TestRedisCounters_IncrementFailureIsTyped(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectHIncrBy(redisCountersKey, "code_completion", 1).SetErr(assert.AnError)

	counters := NewRedisCounters(client)
	err := counters.Increment(context.Background(), "code_completion")

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeRedisUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
