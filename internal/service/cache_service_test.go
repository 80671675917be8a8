package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ascend-api/internal/models"
	appErrors "github.com/noah-isme/ascend-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return errors.New("connection refused")
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func TestCacheServiceRoundTripAndMetrics(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 30*time.Second, nil, true)
	ctx := context.Background()

	var stats models.FeedbackStats
	assert.False(t, svc.Get(ctx, cacheKeyFeedbackStats, &stats))

	svc.Set(ctx, cacheKeyFeedbackStats, models.FeedbackStats{TotalFeedback: 3}, 0)
	assert.Equal(t, 30*time.Second, repo.ttls[cacheKeyFeedbackStats])

	require.True(t, svc.Get(ctx, cacheKeyFeedbackStats, &stats))
	assert.Equal(t, 3, stats.TotalFeedback)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
}

func TestCacheServiceInvalidatePattern(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, true)
	ctx := context.Background()

	svc.Set(ctx, trustMetricsCacheKey("m1"), models.TrustMetrics{MentorID: "m1"}, 0)
	svc.Set(ctx, trustMetricsCacheKey("m2"), models.TrustMetrics{MentorID: "m2"}, 0)
	svc.Set(ctx, cacheKeyMatchingStats, models.MatchingStats{TotalMentors: 1}, 0)

	svc.InvalidatePattern(ctx, cacheKeyTrustPattern)
	assert.False(t, repo.has(trustMetricsCacheKey("m1")))
	assert.False(t, repo.has(trustMetricsCacheKey("m2")))
	assert.True(t, repo.has(cacheKeyMatchingStats))

	svc.Invalidate(ctx, cacheKeyMatchingStats)
	assert.False(t, repo.has(cacheKeyMatchingStats))
}

func TestCacheServiceDisabledAndFailures(t *testing.T) {
	repo := newMemoryCacheRepo()
	ctx := context.Background()

	disabled := NewCacheService(repo, nil, 0, nil, false)
	disabled.Set(ctx, "k", 1, 0)
	assert.False(t, repo.has("k"))
	var out int
	assert.False(t, disabled.Get(ctx, "k", &out))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.Invalidate(ctx, "k")

	repo.failGet = true
	failing := NewCacheService(repo, nil, 0, nil, true)
	assert.False(t, failing.Get(ctx, "k", &out))
}
