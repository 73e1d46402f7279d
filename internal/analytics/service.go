package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// RecordSource fetches raw metric records for a query's filter scope.
// Implementations live in internal/storage and internal/warehouse.
type RecordSource interface {
	FetchRecords(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error)
}

// ValidationError marks a rejected query parameter. HTTP handlers map it to
// a 400 response with the field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateQuery checks the inbound filter criteria. Degenerate scopes (empty
// results) are not errors; only malformed input is.
func ValidateQuery(q metrics.Query) error {
	if q.CompanyID == "" {
		return &ValidationError{Field: "company_id", Message: "company id is required"}
	}
	for _, d := range []struct{ field, value string }{
		{"start_date", q.StartDate},
		{"end_date", q.EndDate},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d.value); err != nil {
			return &ValidationError{Field: d.field, Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", d.value)}
		}
	}
	if q.StartDate != "" && q.EndDate != "" && q.StartDate > q.EndDate {
		return &ValidationError{Field: "date_range", Message: "start date is after end date"}
	}
	if _, err := metrics.ParseGranularity(string(q.Granularity)); err != nil {
		return &ValidationError{Field: "granularity", Message: err.Error()}
	}
	return nil
}

// Service is the read-only aggregation pipeline. It holds no state between
// requests; every call fetches fresh records and reduces them in memory.
type Service struct {
	source RecordSource
}

// NewService creates the analytics service over a record source.
func NewService(source RecordSource) *Service {
	return &Service{source: source}
}

// SummaryResponse is the aggregated-metrics dashboard payload.
type SummaryResponse struct {
	AggregatedMetrics metrics.AggregatedMetrics `json:"aggregated_metrics"`
	AverageRates      metrics.RateSet           `json:"average_rates"`
	DistributionStats map[string]DistStats      `json:"distribution_stats"`
	DomainCount       int                       `json:"domain_count"`
	TotalMailboxes    int                       `json:"total_mailboxes"`
}

// ComparisonResponse ranks domains against each other.
type ComparisonResponse struct {
	Domains           []GroupPerformance        `json:"domains"`
	AggregatedMetrics metrics.AggregatedMetrics `json:"aggregated_metrics"`
	AverageRates      metrics.RateSet           `json:"average_rates"`
	TopPerformer      *GroupPerformance         `json:"top_performer,omitempty"`
	Insights          []string                  `json:"insights"`
}

// TrendPoint is one (bucket, domain) cell of the trends payload.
type TrendPoint struct {
	Date               string                    `json:"date"`
	DomainID           string                    `json:"domain_id"`
	Label              string                    `json:"label"`
	Metrics            metrics.AggregatedMetrics `json:"metrics"`
	Rates              metrics.RateSet           `json:"rates"`
	HealthScore        int                       `json:"health_score"`
	MailboxInsights    []string                  `json:"mailbox_insights,omitempty"`
	CorrelationMetrics CorrelationMetrics        `json:"correlation_metrics"`
}

// TrendsResponse is the time-bucketed series plus the overall direction.
type TrendsResponse struct {
	Points        []TrendPoint   `json:"points"`
	Trend         TrendDirection `json:"trend"`
	TrendStrength float64        `json:"trend_strength"`
	Granularity   string         `json:"granularity"`
}

// InsightsSummary accompanies the generated insights.
type InsightsSummary struct {
	TotalDomains        int       `json:"total_domains"`
	TotalSent           int64     `json:"total_sent"`
	AverageDeliveryRate float64   `json:"average_delivery_rate"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// InsightsResponse is the heuristic-observations payload.
type InsightsResponse struct {
	Insights []Insight       `json:"insights"`
	Summary  InsightsSummary `json:"summary"`
}

func (s *Service) fetch(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}
	records, err := s.source.FetchRecords(ctx, q)
	if err != nil {
		// Upstream failures propagate unchanged; the pipeline cannot tell
		// transient from permanent.
		return nil, err
	}
	return records, nil
}

// Summary aggregates the full filter scope and reports per-domain rate
// distributions. An empty scope yields a zero-valued, well-formed response.
func (s *Service) Summary(ctx context.Context, q metrics.Query) (*SummaryResponse, error) {
	records, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	agg := metrics.Aggregate(records)
	domains := metrics.GroupBy(records, metrics.DomainKey)

	rateSets := make([]metrics.RateSet, 0, len(domains))
	for _, g := range domains {
		rateSets = append(rateSets, metrics.Aggregate(g.Records).Rates())
	}

	dist := map[string]DistStats{
		"delivery_rate": Distribution(pluck(rateSets, func(r metrics.RateSet) float64 { return r.DeliveryRate })),
		"open_rate":     Distribution(pluck(rateSets, func(r metrics.RateSet) float64 { return r.OpenRate })),
		"click_rate":    Distribution(pluck(rateSets, func(r metrics.RateSet) float64 { return r.ClickRate })),
		"reply_rate":    Distribution(pluck(rateSets, func(r metrics.RateSet) float64 { return r.ReplyRate })),
		"bounce_rate":   Distribution(pluck(rateSets, func(r metrics.RateSet) float64 { return r.BounceRate })),
		"spam_rate":     Distribution(pluck(rateSets, func(r metrics.RateSet) float64 { return r.SpamRate })),
	}

	return &SummaryResponse{
		AggregatedMetrics: agg,
		AverageRates:      agg.Rates(),
		DistributionStats: dist,
		DomainCount:       len(domains),
		TotalMailboxes:    countMailboxes(records),
	}, nil
}

// Comparison ranks the scope's domains by delivery rate.
func (s *Service) Comparison(ctx context.Context, q metrics.Query) (*ComparisonResponse, error) {
	records, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	domains := metrics.GroupBy(records, metrics.DomainKey)
	ranked, top := RankGroups(domains, DeliveryRate)
	agg := metrics.Aggregate(records)

	texts := make([]string, 0)
	for _, ins := range GenerateInsights(ranked) {
		texts = append(texts, ins.Description)
	}

	return &ComparisonResponse{
		Domains:           ranked,
		AggregatedMetrics: agg,
		AverageRates:      agg.Rates(),
		TopPerformer:      top,
		Insights:          texts,
	}, nil
}

// Trends buckets the scope by time and domain and classifies the overall
// movement of the delivery rate.
func (s *Service) Trends(ctx context.Context, q metrics.Query) (*TrendsResponse, error) {
	records, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	granularity, _ := metrics.ParseGranularity(string(q.Granularity))

	buckets, err := BucketRecords(records, granularity, metrics.DomainKey)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}

	// Correlations are per-domain, over that domain's chronological buckets.
	perDomain := make(map[string][]TimeBucket)
	for _, b := range buckets {
		perDomain[b.Key] = append(perDomain[b.Key], b)
	}
	correlations := make(map[string]CorrelationMetrics, len(perDomain))
	for domain, series := range perDomain {
		correlations[domain] = SeriesCorrelations(series)
	}

	// Mailbox insights need the raw rows of each (bucket, domain) cell.
	cellRecords := make(map[string][]metrics.MetricRecord)
	for _, r := range records {
		start, _ := metrics.BucketStart(r.Date, granularity)
		key := start.Format("2006-01-02") + ":" + r.Domain
		cellRecords[key] = append(cellRecords[key], r)
	}

	points := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, TrendPoint{
			Date:               b.Date,
			DomainID:           b.Key,
			Label:              b.Label,
			Metrics:            b.Metrics,
			Rates:              b.Rates,
			HealthScore:        b.HealthScore,
			MailboxInsights:    MailboxBucketInsights(cellRecords[b.Date+":"+b.Key]),
			CorrelationMetrics: correlations[b.Key],
		})
	}

	// Overall trend runs over date-only buckets so multi-domain scopes still
	// produce a single chronological series.
	overall, err := BucketRecords(records, granularity, func(metrics.MetricRecord) string { return "" })
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}
	series := make([]float64, len(overall))
	for i, b := range overall {
		series[i] = b.Rates.DeliveryRate
	}
	direction, strength := Trend(series)

	return &TrendsResponse{
		Points:        points,
		Trend:         direction,
		TrendStrength: strength,
		Granularity:   string(granularity),
	}, nil
}

// Insights generates the heuristic observations for the scope.
func (s *Service) Insights(ctx context.Context, q metrics.Query) (*InsightsResponse, error) {
	records, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	domains := metrics.GroupBy(records, metrics.DomainKey)
	ranked, _ := RankGroups(domains, DeliveryRate)
	agg := metrics.Aggregate(records)

	insights := GenerateInsights(ranked)
	if insights == nil {
		insights = []Insight{}
	}

	return &InsightsResponse{
		Insights: insights,
		Summary: InsightsSummary{
			TotalDomains:        len(domains),
			TotalSent:           agg.Sent,
			AverageDeliveryRate: agg.Rates().DeliveryRate,
			GeneratedAt:         time.Now().UTC(),
		},
	}, nil
}

func pluck(sets []metrics.RateSet, f func(metrics.RateSet) float64) []float64 {
	out := make([]float64, len(sets))
	for i, r := range sets {
		out[i] = f(r)
	}
	return out
}

func countMailboxes(records []metrics.MetricRecord) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.MailboxID != "" {
			seen[r.MailboxID] = struct{}{}
		}
	}
	return len(seen)
}
