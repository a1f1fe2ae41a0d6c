// internal/routing/costmodel/counters.go
package costmodel

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/common/metrics"
	"routing-engine/internal/models"
)

// Counters is the accounting-window task counter behind the cost model. The
// counter state is the engine's only shared mutable resource; every
// implementation must make Increment a single atomic read-modify-write so
// concurrent routing calls never lose updates.
type Counters interface {
	Increment(ctx context.Context, taskType string) error
	Snapshot(ctx context.Context) (models.BatchSnapshot, error)
	Reset(ctx context.Context) error
}

// ==========================
// In-memory implementation
// ==========================

// MemoryCounters keeps the window in process memory. Suitable for a single
// engine instance and for tests.
type MemoryCounters struct {
	mu          sync.Mutex
	counts      map[string]int64
	windowStart time.Time
}

func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{
		counts:      make(map[string]int64),
		windowStart: time.Now().UTC(),
	}
}

func (m *MemoryCounters) Increment(ctx context.Context, taskType string) error {
	m.mu.Lock()
	m.counts[taskType]++
	count := m.counts[taskType]
	m.mu.Unlock()

	metrics.BatchWindowTasks.WithLabelValues(taskType).Set(float64(count))
	return nil
}

func (m *MemoryCounters) Snapshot(ctx context.Context) (models.BatchSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int64, len(m.counts))
	for k, v := range m.counts {
		counts[k] = v
	}
	return models.BatchSnapshot{CountsByType: counts, WindowStart: m.windowStart}, nil
}

func (m *MemoryCounters) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts = make(map[string]int64)
	m.windowStart = time.Now().UTC()
	return nil
}

// ==========================
// Redis implementation
// ==========================

const (
	redisCountersKey    = "routing:batch:counters"
	redisWindowStartKey = "routing:batch:window_start"
)

// RedisCounters shares one accounting window across engine instances.
// HINCRBY gives the atomic read-modify-write the window requires.
type RedisCounters struct {
	client *redis.Client
}

func NewRedisCounters(client *redis.Client) *RedisCounters {
	return &RedisCounters{client: client}
}

func (r *RedisCounters) Increment(ctx context.Context, taskType string) error {
	count, err := r.client.HIncrBy(ctx, redisCountersKey, taskType, 1).Result()
	if err != nil {
		return stderrors.NewRedisUnavailableError(err)
	}

	// First increment of a fresh window stamps its start time.
	r.client.SetNX(ctx, redisWindowStartKey, time.Now().UTC().Format(time.RFC3339), 0)

	metrics.BatchWindowTasks.WithLabelValues(taskType).Set(float64(count))
	return nil
}

func (r *RedisCounters) Snapshot(ctx context.Context) (models.BatchSnapshot, error) {
	raw, err := r.client.HGetAll(ctx, redisCountersKey).Result()
	if err != nil {
		return models.BatchSnapshot{}, stderrors.NewRedisUnavailableError(err)
	}

	counts := make(map[string]int64, len(raw))
	for taskType, val := range raw {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			continue
		}
		counts[taskType] = n
	}

	snapshot := models.BatchSnapshot{CountsByType: counts}
	if stamp, err := r.client.Get(ctx, redisWindowStartKey).Result(); err == nil {
		if ts, err := time.Parse(time.RFC3339, stamp); err == nil {
			snapshot.WindowStart = ts
		}
	}

	return snapshot, nil
}

func (r *RedisCounters) Reset(ctx context.Context) error {
	if err := r.client.Del(ctx, redisCountersKey, redisWindowStartKey).Err(); err != nil {
		return stderrors.NewRedisUnavailableError(err)
	}
	return nil
}
