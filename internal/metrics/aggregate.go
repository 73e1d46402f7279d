package metrics

// AggregatedMetrics is the sum of count fields across a set of MetricRecords.
// Derived per request, never persisted.
type AggregatedMetrics struct {
	Sent           int64 `json:"sent"`
	Delivered      int64 `json:"delivered"`
	OpenedTracked  int64 `json:"opened_tracked"`
	ClickedTracked int64 `json:"clicked_tracked"`
	Replied        int64 `json:"replied"`
	Bounced        int64 `json:"bounced"`
	Unsubscribed   int64 `json:"unsubscribed"`
	SpamComplaints int64 `json:"spam_complaints"`
}

// RateSet holds the ratios derived from an AggregatedMetrics. Every rate is
// in [0,1]; a zero denominator yields 0 for that rate.
type RateSet struct {
	DeliveryRate    float64 `json:"delivery_rate"`
	OpenRate        float64 `json:"open_rate"`
	ClickRate       float64 `json:"click_rate"`
	ReplyRate       float64 `json:"reply_rate"`
	BounceRate      float64 `json:"bounce_rate"`
	UnsubscribeRate float64 `json:"unsubscribe_rate"`
	SpamRate        float64 `json:"spam_rate"`
}

// EmptyAggregatedMetrics returns the canonical all-zero aggregate used for
// empty record sets.
func EmptyAggregatedMetrics() AggregatedMetrics {
	return AggregatedMetrics{}
}

// EmptyRateSet returns the canonical all-zero rate set.
func EmptyRateSet() RateSet {
	return RateSet{}
}

// Aggregate sums the count fields of the given records. An empty or nil
// input yields the all-zero aggregate.
func Aggregate(records []MetricRecord) AggregatedMetrics {
	agg := EmptyAggregatedMetrics()
	for _, r := range records {
		agg.Sent += r.Sent
		agg.Delivered += r.Delivered
		agg.OpenedTracked += r.OpenedTracked
		agg.ClickedTracked += r.ClickedTracked
		agg.Replied += r.Replied
		agg.Bounced += r.Bounced
		agg.Unsubscribed += r.Unsubscribed
		agg.SpamComplaints += r.SpamComplaints
	}
	return agg
}

// Rates derives the rate set from the aggregate.
func (a AggregatedMetrics) Rates() RateSet {
	return RateSet{
		DeliveryRate:    ratio(a.Delivered, a.Sent),
		OpenRate:        ratio(a.OpenedTracked, a.Delivered),
		ClickRate:       ratio(a.ClickedTracked, a.Delivered),
		ReplyRate:       ratio(a.Replied, a.Delivered),
		BounceRate:      ratio(a.Bounced, a.Sent),
		UnsubscribeRate: ratio(a.Unsubscribed, a.Delivered),
		SpamRate:        ratio(a.SpamComplaints, a.Delivered),
	}
}

func ratio(num, denom int64) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
