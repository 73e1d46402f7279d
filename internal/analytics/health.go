package analytics

import (
	"math"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// Penalty weights applied per percentage point of the offending rate.
// Mailbox scores penalize harder: a single bad mailbox should stand out
// before it drags the whole domain down.
const (
	domainBouncePenalty  = 2.0
	domainSpamPenalty    = 5.0
	mailboxBouncePenalty = 3.0
	mailboxSpamPenalty   = 6.0
)

// DomainHealthScore derives a 0-100 health score for a sending domain.
// A domain with no traffic scores a neutral 100 since its rates are all zero.
func DomainHealthScore(r metrics.RateSet) int {
	return healthScore(r, domainBouncePenalty, domainSpamPenalty)
}

// MailboxHealthScore derives a 0-100 health score for a single mailbox.
func MailboxHealthScore(r metrics.RateSet) int {
	return healthScore(r, mailboxBouncePenalty, mailboxSpamPenalty)
}

func healthScore(r metrics.RateSet, bounceWeight, spamWeight float64) int {
	score := 100.0
	score -= r.BounceRate * 100 * bounceWeight
	score -= r.SpamRate * 100 * spamWeight
	return int(math.Round(math.Max(0, math.Min(100, score))))
}
