package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

func TestTenantPK(t *testing.T) {
	assert.Equal(t, "METRICS#acme", tenantPK("acme"))
}

func TestRecordSK(t *testing.T) {
	r := metrics.MetricRecord{Date: "2026-08-01", Domain: "a.com", MailboxID: "mb-1"}
	assert.Equal(t, "2026-08-01#a.com#mb-1", recordSK(r))

	// Domain-level rows get a sentinel so they sort alongside mailbox rows.
	r.MailboxID = ""
	assert.Equal(t, "2026-08-01#a.com#DOMAIN", recordSK(r))
}

func TestRecordSKRangeBounds(t *testing.T) {
	// The "#~" end bound must sort after every sort key of the end date.
	sk := recordSK(metrics.MetricRecord{Date: "2026-08-31", Domain: "zzz.example", MailboxID: "z9"})
	assert.Less(t, sk, "2026-08-31#~")
	assert.Greater(t, sk, "2026-08-31")
}
