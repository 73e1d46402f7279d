package storage

import (
	"context"
	"sync"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// MemoryStore keeps records in process memory. It backs local development
// and tests; fetches apply the same filter semantics as the AWS store.
type MemoryStore struct {
	mu      sync.RWMutex
	records []metrics.MetricRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends records to the store.
func (s *MemoryStore) Add(records ...metrics.MetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

// FetchRecords returns the records matching the query scope, in insertion
// order.
func (s *MemoryStore) FetchRecords(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []metrics.MetricRecord
	for _, r := range s.records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
