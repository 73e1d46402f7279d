package metrics

import (
	"time"
)

// MetricRecord is one calendar day of raw sending activity for a mailbox or
// a sending domain, as returned by the backing stores. Count fields are
// non-negative and Delivered never exceeds Sent.
type MetricRecord struct {
	Date      string `json:"date"` // 2006-01-02
	CompanyID string `json:"company_id"`
	Domain    string `json:"domain"`
	MailboxID string `json:"mailbox_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Provider  string `json:"provider,omitempty"`

	Sent           int64 `json:"sent"`
	Delivered      int64 `json:"delivered"`
	OpenedTracked  int64 `json:"opened_tracked"`
	ClickedTracked int64 `json:"clicked_tracked"`
	Replied        int64 `json:"replied"`
	Bounced        int64 `json:"bounced"`
	Unsubscribed   int64 `json:"unsubscribed"`
	SpamComplaints int64 `json:"spam_complaints"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Counts holds the raw daily counters shared by both record variants.
type Counts struct {
	Sent           int64
	Delivered      int64
	OpenedTracked  int64
	ClickedTracked int64
	Replied        int64
	Bounced        int64
	Unsubscribed   int64
	SpamComplaints int64
}

// MetricSource is a tagged record variant: counts either belong to a single
// mailbox or to a whole sending domain. Each variant carries only the fields
// it legitimately owns; Record converts either to the shared MetricRecord
// shape without placeholder values.
type MetricSource interface {
	Record() MetricRecord
}

type mailboxSource struct {
	date      string
	companyID string
	domain    string
	mailboxID string
	email     string
	provider  string
	counts    Counts
	updatedAt time.Time
}

type domainSource struct {
	date      string
	companyID string
	domain    string
	counts    Counts
	updatedAt time.Time
}

// FromMailbox builds a MetricSource for a single mailbox's daily counts.
func FromMailbox(date, companyID, domain, mailboxID, email, provider string, c Counts, updatedAt time.Time) MetricSource {
	return mailboxSource{
		date:      date,
		companyID: companyID,
		domain:    domain,
		mailboxID: mailboxID,
		email:     email,
		provider:  provider,
		counts:    c,
		updatedAt: updatedAt,
	}
}

// FromDomain builds a MetricSource for a sending domain's daily counts.
func FromDomain(date, companyID, domain string, c Counts, updatedAt time.Time) MetricSource {
	return domainSource{
		date:      date,
		companyID: companyID,
		domain:    domain,
		counts:    c,
		updatedAt: updatedAt,
	}
}

func (s mailboxSource) Record() MetricRecord {
	r := recordFromCounts(s.date, s.companyID, s.domain, s.counts, s.updatedAt)
	r.MailboxID = s.mailboxID
	r.Email = s.email
	r.Provider = s.provider
	return r
}

func (s domainSource) Record() MetricRecord {
	return recordFromCounts(s.date, s.companyID, s.domain, s.counts, s.updatedAt)
}

func recordFromCounts(date, companyID, domain string, c Counts, updatedAt time.Time) MetricRecord {
	return MetricRecord{
		Date:           date,
		CompanyID:      companyID,
		Domain:         domain,
		Sent:           c.Sent,
		Delivered:      c.Delivered,
		OpenedTracked:  c.OpenedTracked,
		ClickedTracked: c.ClickedTracked,
		Replied:        c.Replied,
		Bounced:        c.Bounced,
		Unsubscribed:   c.Unsubscribed,
		SpamComplaints: c.SpamComplaints,
		UpdatedAt:      updatedAt,
	}
}

// Query holds the filter criteria for fetching metric records.
type Query struct {
	CompanyID   string
	DomainIDs   []string
	MailboxIDs  []string
	StartDate   string // inclusive, 2006-01-02; empty means unbounded
	EndDate     string // inclusive, 2006-01-02; empty means unbounded
	Granularity Granularity
}

// Matches reports whether a record falls inside the query's filter scope.
// Date bounds are inclusive; empty filter lists match everything.
func (q Query) Matches(r MetricRecord) bool {
	if q.CompanyID != "" && r.CompanyID != q.CompanyID {
		return false
	}
	if q.StartDate != "" && r.Date < q.StartDate {
		return false
	}
	if q.EndDate != "" && r.Date > q.EndDate {
		return false
	}
	if len(q.DomainIDs) > 0 && !containsString(q.DomainIDs, r.Domain) {
		return false
	}
	if len(q.MailboxIDs) > 0 && !containsString(q.MailboxIDs, r.MailboxID) {
		return false
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
