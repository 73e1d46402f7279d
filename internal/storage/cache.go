package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// CachedSource is a read-through Redis cache over a record source. It caches
// the raw fetched record sets, not pipeline results; aggregation still runs
// fresh per request. Redis failures degrade to a direct fetch.
type CachedSource struct {
	source Source
	client *redis.Client
	ttl    time.Duration
}

// NewCachedSource wraps source with a Redis cache. TTL <= 0 defaults to one
// minute.
func NewCachedSource(source Source, client *redis.Client, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedSource{source: source, client: client, ttl: ttl}
}

func cacheKey(q metrics.Query) string {
	return fmt.Sprintf("mailmetrics:records:%s:%s:%s:%s:%s",
		q.CompanyID,
		strings.Join(q.DomainIDs, ","),
		strings.Join(q.MailboxIDs, ","),
		q.StartDate,
		q.EndDate,
	)
}

// FetchRecords serves from cache when possible, otherwise fetches and
// populates the cache.
func (c *CachedSource) FetchRecords(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error) {
	key := cacheKey(q)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var records []metrics.MetricRecord
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		// Corrupt entry; fall through and overwrite it.
	} else if err != redis.Nil {
		log.Printf("[Cache] Redis get failed (%s): %v, fetching directly", key, err)
	}

	records, err := c.source.FetchRecords(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Printf("[Cache] Redis set failed (%s): %v", key, err)
		}
	}
	return records, nil
}
