package analytics

import (
	"sort"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// RateSelector picks the primary rate used for ranking.
type RateSelector func(metrics.RateSet) float64

// DeliveryRate is the default ranking rate.
func DeliveryRate(r metrics.RateSet) float64 { return r.DeliveryRate }

// OpenRate ranks by tracked opens over delivered.
func OpenRate(r metrics.RateSet) float64 { return r.OpenRate }

// GroupPerformance is one domain's (or mailbox's) aggregate with its position
// in the ranked comparison.
type GroupPerformance struct {
	Key            string                    `json:"key"`
	Metrics        metrics.AggregatedMetrics `json:"metrics"`
	Rates          metrics.RateSet           `json:"rates"`
	HealthScore    int                       `json:"health_score"`
	Ranking        int                       `json:"ranking"`
	PercentileRank float64                   `json:"percentile_rank"`
	Advantage      float64                   `json:"advantage"`
}

// RankGroups aggregates each group, sorts descending by the primary rate
// (stable, so ties keep input order), and assigns 1-based ranks, percentile
// ranks, and the advantage over the across-group average. The returned top
// performer is the rank-1 entry, nil for empty input.
func RankGroups(groups []metrics.Group, primary RateSelector) ([]GroupPerformance, *GroupPerformance) {
	if primary == nil {
		primary = DeliveryRate
	}
	if len(groups) == 0 {
		return nil, nil
	}

	perf := make([]GroupPerformance, 0, len(groups))
	sum := 0.0
	for _, g := range groups {
		agg := metrics.Aggregate(g.Records)
		rates := agg.Rates()
		perf = append(perf, GroupPerformance{
			Key:         g.Key,
			Metrics:     agg,
			Rates:       rates,
			HealthScore: DomainHealthScore(rates),
		})
		sum += primary(rates)
	}
	avg := sum / float64(len(perf))

	sort.SliceStable(perf, func(i, j int) bool {
		return primary(perf[i].Rates) > primary(perf[j].Rates)
	})

	n := len(perf)
	for i := range perf {
		perf[i].Ranking = i + 1
		perf[i].PercentileRank = float64(n-i) / float64(n) * 100
		perf[i].Advantage = primary(perf[i].Rates) - avg
	}

	top := perf[0]
	return perf, &top
}
