package analytics

import (
	"fmt"

	"github.com/google/uuid"
)

// Insight is a heuristic, human-readable observation generated from group
// comparisons. Computed per request, never stored.
type Insight struct {
	ID             string `json:"id"`
	Type           string `json:"type"`   // "performance", "volume", "health"
	Title          string `json:"title"`
	Description    string `json:"description"`
	Impact         string `json:"impact"` // "positive", "neutral", "negative"
	Recommendation string `json:"recommendation,omitempty"`
}

// Thresholds for the volume and underperformance rules.
const (
	highVolumeShare       = 0.20
	underperformanceRatio = 0.90
)

// GenerateInsights applies the fixed rule list to the ranked groups, in
// order: top performer, high volume concentration, underperforming domains.
// Rules are independent; a rule without qualifying data emits nothing.
func GenerateInsights(perf []GroupPerformance) []Insight {
	var insights []Insight

	// Top performer: highest delivery rate across groups.
	if len(perf) > 0 {
		top := perf[0]
		for _, p := range perf[1:] {
			if p.Rates.DeliveryRate > top.Rates.DeliveryRate {
				top = p
			}
		}
		insights = append(insights, Insight{
			ID:             uuid.New().String(),
			Type:           "performance",
			Title:          "Top performing domain",
			Description:    fmt.Sprintf("%s leads with a %.1f%% delivery rate", top.Key, top.Rates.DeliveryRate*100),
			Impact:         "positive",
			Recommendation: "Route higher-value campaigns through your best-delivering domain.",
		})
	}

	// High volume concentration: any group above 20% of total sent.
	var totalSent int64
	for _, p := range perf {
		totalSent += p.Metrics.Sent
	}
	if totalSent > 0 {
		heavy := 0
		for _, p := range perf {
			if float64(p.Metrics.Sent) > float64(totalSent)*highVolumeShare {
				heavy++
			}
		}
		if heavy > 0 {
			insights = append(insights, Insight{
				ID:             uuid.New().String(),
				Type:           "volume",
				Title:          "Volume concentration",
				Description:    fmt.Sprintf("%d domain(s) carry more than %.0f%% of total send volume", heavy, highVolumeShare*100),
				Impact:         "neutral",
				Recommendation: "Spread volume across more domains to reduce reputation risk.",
			})
		}
	}

	// Underperformance: delivery rate below 90% of the cross-group average.
	if len(perf) > 0 {
		sum := 0.0
		for _, p := range perf {
			sum += p.Rates.DeliveryRate
		}
		avg := sum / float64(len(perf))
		lagging := 0
		for _, p := range perf {
			if p.Rates.DeliveryRate < avg*underperformanceRatio {
				lagging++
			}
		}
		if lagging > 0 {
			insights = append(insights, Insight{
				ID:             uuid.New().String(),
				Type:           "health",
				Title:          "Underperforming domains",
				Description:    fmt.Sprintf("%d domain(s) deliver below %.0f%% of the group average", lagging, underperformanceRatio*100),
				Impact:         "negative",
				Recommendation: "Review list hygiene and authentication for the lagging domains.",
			})
		}
	}

	return insights
}
