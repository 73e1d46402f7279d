package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxpilot/mailmetrics/internal/config"
	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

func configFor(storageType string) config.StorageConfig {
	return config.StorageConfig{Type: storageType, AWSRegion: "us-east-1"}
}

type countingSource struct {
	inner Source
	calls int
}

func (c *countingSource) FetchRecords(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error) {
	c.calls++
	return c.inner.FetchRecords(ctx, q)
}

func newTestCache(t *testing.T) (*CachedSource, *countingSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := NewMemoryStore()
	store.Add(
		testRecord("2026-08-01", "acme", "a.com", "m1", 100),
		testRecord("2026-08-02", "acme", "a.com", "m1", 200),
	)
	counting := &countingSource{inner: store}
	return NewCachedSource(counting, client, time.Minute), counting, mr
}

func TestCachedSourceReadThrough(t *testing.T) {
	cache, counting, _ := newTestCache(t)
	q := metrics.Query{CompanyID: "acme"}

	first, err := cache.FetchRecords(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, counting.calls)

	// Second fetch hits the cache.
	second, err := cache.FetchRecords(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedSourceKeyedByScope(t *testing.T) {
	cache, counting, _ := newTestCache(t)

	_, err := cache.FetchRecords(context.Background(), metrics.Query{CompanyID: "acme"})
	require.NoError(t, err)

	// Different filter scope misses the cache.
	narrow, err := cache.FetchRecords(context.Background(), metrics.Query{
		CompanyID: "acme",
		StartDate: "2026-08-02",
	})
	require.NoError(t, err)
	assert.Len(t, narrow, 1)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedSourceExpiry(t *testing.T) {
	cache, counting, mr := newTestCache(t)
	q := metrics.Query{CompanyID: "acme"}

	_, err := cache.FetchRecords(context.Background(), q)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.FetchRecords(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedSourceFallsThroughOnRedisFailure(t *testing.T) {
	cache, counting, mr := newTestCache(t)
	mr.Close()

	records, err := cache.FetchRecords(context.Background(), metrics.Query{CompanyID: "acme"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedSourceCorruptEntry(t *testing.T) {
	cache, counting, mr := newTestCache(t)
	q := metrics.Query{CompanyID: "acme"}

	require.NoError(t, mr.Set(cacheKey(q), "{not json"))

	records, err := cache.FetchRecords(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, counting.calls)
}
