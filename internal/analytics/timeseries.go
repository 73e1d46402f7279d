package analytics

import (
	"fmt"
	"sort"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// TrendDirection classifies how the primary rate moved across a series.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// trendThreshold is the minimum first-to-last rate delta that counts as a
// real move rather than noise.
const trendThreshold = 0.01

// TimeBucket is one (bucket start, group key) cell of a trend series.
type TimeBucket struct {
	Date        string                    `json:"date"` // bucket start, 2006-01-02
	Key         string                    `json:"key"`  // group key (domain)
	Label       string                    `json:"label"`
	Metrics     metrics.AggregatedMetrics `json:"metrics"`
	Rates       metrics.RateSet           `json:"rates"`
	HealthScore int                       `json:"health_score"`
}

// BucketRecords groups records by (bucket start, key) at the given
// granularity, aggregates each cell, and returns the cells sorted ascending
// by the composite "date:key" string. Records whose date fails to parse are
// rejected rather than silently dropped.
func BucketRecords(records []metrics.MetricRecord, g metrics.Granularity, keyFn func(metrics.MetricRecord) string) ([]TimeBucket, error) {
	if keyFn == nil {
		keyFn = metrics.DomainKey
	}

	for _, r := range records {
		if _, err := metrics.BucketStart(r.Date, g); err != nil {
			return nil, err
		}
	}

	cells := metrics.GroupBy(records, func(r metrics.MetricRecord) string {
		start, _ := metrics.BucketStart(r.Date, g)
		return start.Format("2006-01-02") + ":" + keyFn(r)
	})

	buckets := make([]TimeBucket, 0, len(cells))
	for _, cell := range cells {
		start, _ := metrics.BucketStart(cell.Records[0].Date, g)
		agg := metrics.Aggregate(cell.Records)
		rates := agg.Rates()
		buckets = append(buckets, TimeBucket{
			Date:        start.Format("2006-01-02"),
			Key:         keyFn(cell.Records[0]),
			Label:       metrics.BucketLabel(start, g),
			Metrics:     agg,
			Rates:       rates,
			HealthScore: DomainHealthScore(rates),
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date+":"+buckets[i].Key < buckets[j].Date+":"+buckets[j].Key
	})
	return buckets, nil
}

// Trend classifies a bucketed rate series by comparing its first and last
// points. Series of fewer than 2 points are stable with strength 0; strength
// is the absolute first-to-last delta otherwise.
func Trend(series []float64) (TrendDirection, float64) {
	if len(series) < 2 {
		return TrendStable, 0
	}
	delta := series[len(series)-1] - series[0]
	switch {
	case delta > trendThreshold:
		return TrendImproving, delta
	case delta < -trendThreshold:
		return TrendDeclining, -delta
	default:
		return TrendStable, abs(delta)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// CorrelationMetrics carries the Pearson estimates attached to a domain's
// trend series.
type CorrelationMetrics struct {
	VolumeVsBounce float64 `json:"volume_vs_bounce"`
	OpenVsClick    float64 `json:"open_vs_click"`
}

// SeriesCorrelations computes correlations over a domain's chronological
// buckets: send volume against bounce rate, and open rate against click rate.
func SeriesCorrelations(buckets []TimeBucket) CorrelationMetrics {
	volumes := make([]float64, len(buckets))
	bounces := make([]float64, len(buckets))
	opens := make([]float64, len(buckets))
	clicks := make([]float64, len(buckets))
	for i, b := range buckets {
		volumes[i] = float64(b.Metrics.Sent)
		bounces[i] = b.Rates.BounceRate
		opens[i] = b.Rates.OpenRate
		clicks[i] = b.Rates.ClickRate
	}
	return CorrelationMetrics{
		VolumeVsBounce: PearsonCorrelation(volumes, bounces),
		OpenVsClick:    PearsonCorrelation(opens, clicks),
	}
}

// MailboxBucketInsights summarizes mailbox-level activity inside one bucket:
// how many mailboxes were active and which delivered best.
func MailboxBucketInsights(records []metrics.MetricRecord) []string {
	mailboxes := metrics.GroupBy(records, metrics.MailboxKey)

	active := 0
	bestKey := ""
	bestRate := -1.0
	for _, g := range mailboxes {
		if g.Key == "" {
			continue // domain-level rows carry no mailbox
		}
		active++
		rates := metrics.Aggregate(g.Records).Rates()
		if rates.DeliveryRate > bestRate {
			bestRate = rates.DeliveryRate
			bestKey = g.Key
		}
	}

	if active == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("%d active mailboxes", active)}
	if bestKey != "" {
		out = append(out, fmt.Sprintf("best mailbox %s at %.1f%% delivery", bestKey, bestRate*100))
	}
	return out
}
