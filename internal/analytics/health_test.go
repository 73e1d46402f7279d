package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

func TestDomainHealthScore(t *testing.T) {
	// Clean traffic scores a perfect 100.
	assert.Equal(t, 100, DomainHealthScore(metrics.RateSet{DeliveryRate: 1}))

	// 5% bounce, 0.5% spam: 100 - 5*2 - 0.5*5 = 87.5 rounds to 88.
	score := DomainHealthScore(metrics.RateSet{BounceRate: 0.05, SpamRate: 0.005})
	assert.Equal(t, 88, score)

	// Catastrophic rates clamp at 0.
	assert.Equal(t, 0, DomainHealthScore(metrics.RateSet{BounceRate: 0.5, SpamRate: 0.1}))
}

func TestDomainHealthScoreNoTraffic(t *testing.T) {
	// Zero-traffic aggregates have all-zero rates and score a neutral 100.
	rates := metrics.EmptyAggregatedMetrics().Rates()
	assert.Equal(t, 100, DomainHealthScore(rates))
}

func TestMailboxHealthScorePenalizesHarder(t *testing.T) {
	rates := metrics.RateSet{BounceRate: 0.05, SpamRate: 0.005}

	domain := DomainHealthScore(rates)
	mailbox := MailboxHealthScore(rates)

	// 100 - 5*3 - 0.5*6 = 82
	assert.Equal(t, 82, mailbox)
	assert.Less(t, mailbox, domain)
}

func TestHealthScoreRounds(t *testing.T) {
	// 100 - 1.24*2 = 97.52 rounds to 98.
	assert.Equal(t, 98, DomainHealthScore(metrics.RateSet{BounceRate: 0.0124}))
}
