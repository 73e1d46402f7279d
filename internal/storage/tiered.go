package storage

import (
	"context"
	"time"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// TieredSource splits a fetch between the live store and a warehouse archive
// at the retention cutoff: dates older than retention come from the archive,
// the rest from the primary. With no archive configured everything goes to
// the primary.
type TieredSource struct {
	primary       Source
	archive       Source
	retentionDays int
	now           func() time.Time
}

// NewTieredSource creates the split source. retentionDays <= 0 uses the
// store default.
func NewTieredSource(primary, archive Source, retentionDays int) *TieredSource {
	if retentionDays <= 0 {
		retentionDays = RetentionDays
	}
	return &TieredSource{
		primary:       primary,
		archive:       archive,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// FetchRecords fans the query out across the cutoff and concatenates archive
// rows (older) before primary rows (newer).
func (t *TieredSource) FetchRecords(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error) {
	cutoff := t.now().UTC().AddDate(0, 0, -t.retentionDays).Format("2006-01-02")

	if t.archive == nil || (q.StartDate != "" && q.StartDate >= cutoff) {
		return t.primary.FetchRecords(ctx, q)
	}

	// Whole range predates retention.
	if q.EndDate != "" && q.EndDate < cutoff {
		return t.archive.FetchRecords(ctx, q)
	}

	archiveQ := q
	archiveQ.EndDate = previousDay(cutoff)
	old, err := t.archive.FetchRecords(ctx, archiveQ)
	if err != nil {
		return nil, err
	}

	primaryQ := q
	primaryQ.StartDate = cutoff
	recent, err := t.primary.FetchRecords(ctx, primaryQ)
	if err != nil {
		return nil, err
	}

	return append(old, recent...), nil
}

func previousDay(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}
