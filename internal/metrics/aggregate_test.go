package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(date, domain, mailbox string, sent, delivered, opened, clicked, bounced, spam int64) MetricRecord {
	return MetricRecord{
		Date:           date,
		CompanyID:      "acme",
		Domain:         domain,
		MailboxID:      mailbox,
		Sent:           sent,
		Delivered:      delivered,
		OpenedTracked:  opened,
		ClickedTracked: clicked,
		Bounced:        bounced,
		SpamComplaints: spam,
	}
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, EmptyAggregatedMetrics(), Aggregate(nil))
	assert.Equal(t, EmptyAggregatedMetrics(), Aggregate([]MetricRecord{}))
}

func TestAggregateSums(t *testing.T) {
	records := []MetricRecord{
		record("2026-08-01", "a.com", "m1", 100, 95, 40, 10, 5, 1),
		record("2026-08-02", "a.com", "m1", 200, 190, 80, 20, 10, 0),
	}

	agg := Aggregate(records)

	assert.Equal(t, int64(300), agg.Sent)
	assert.Equal(t, int64(285), agg.Delivered)
	assert.Equal(t, int64(120), agg.OpenedTracked)
	assert.Equal(t, int64(30), agg.ClickedTracked)
	assert.Equal(t, int64(15), agg.Bounced)
	assert.Equal(t, int64(1), agg.SpamComplaints)
}

func TestRates(t *testing.T) {
	agg := AggregatedMetrics{
		Sent:           300,
		Delivered:      285,
		OpenedTracked:  120,
		ClickedTracked: 30,
		Bounced:        15,
		SpamComplaints: 3,
	}

	rates := agg.Rates()

	assert.InDelta(t, 0.95, rates.DeliveryRate, 1e-9)
	assert.InDelta(t, 120.0/285.0, rates.OpenRate, 1e-9)
	assert.InDelta(t, 30.0/285.0, rates.ClickRate, 1e-9)
	assert.InDelta(t, 0.05, rates.BounceRate, 1e-9)
	assert.InDelta(t, 3.0/285.0, rates.SpamRate, 1e-9)
}

func TestRatesZeroDenominators(t *testing.T) {
	// Nothing sent: every rate is 0, never NaN.
	assert.Equal(t, EmptyRateSet(), EmptyAggregatedMetrics().Rates())

	// Sent but nothing delivered: delivered-based rates stay 0.
	agg := AggregatedMetrics{Sent: 50, Bounced: 50}
	rates := agg.Rates()
	assert.Equal(t, 0.0, rates.DeliveryRate)
	assert.Equal(t, 0.0, rates.OpenRate)
	assert.InDelta(t, 1.0, rates.BounceRate, 1e-9)
}

func TestAggregateRoundTripWithPartition(t *testing.T) {
	// Summing per-group aggregates equals aggregating everything at once.
	records := []MetricRecord{
		record("2026-08-01", "a.com", "m1", 100, 90, 30, 5, 10, 0),
		record("2026-08-01", "b.com", "m2", 50, 48, 20, 4, 2, 1),
		record("2026-08-02", "a.com", "m1", 70, 65, 25, 6, 5, 0),
	}

	total := Aggregate(records)

	var partitioned AggregatedMetrics
	for _, g := range GroupBy(records, DomainKey) {
		agg := Aggregate(g.Records)
		partitioned.Sent += agg.Sent
		partitioned.Delivered += agg.Delivered
		partitioned.OpenedTracked += agg.OpenedTracked
		partitioned.ClickedTracked += agg.ClickedTracked
		partitioned.Replied += agg.Replied
		partitioned.Bounced += agg.Bounced
		partitioned.Unsubscribed += agg.Unsubscribed
		partitioned.SpamComplaints += agg.SpamComplaints
	}

	assert.Equal(t, total, partitioned)
}
