package metrics

import (
	"fmt"
	"time"
)

// Granularity selects the time-bucket width for trend queries.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a granularity string. Empty defaults to day.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "":
		return GranularityDay, nil
	case GranularityDay, GranularityWeek, GranularityMonth:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want day, week, or month)", s)
	}
}

// Group pairs a grouping key with the records that share it, in original
// relative order.
type Group struct {
	Key     string
	Records []MetricRecord
}

// GroupBy partitions records by keyFn. Groups appear in first-appearance
// order and records keep their original relative order within each group.
// Every input record lands in exactly one group.
func GroupBy(records []MetricRecord, keyFn func(MetricRecord) string) []Group {
	index := make(map[string]int, len(records))
	var groups []Group
	for _, r := range records {
		key := keyFn(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// DomainKey groups by sending domain.
func DomainKey(r MetricRecord) string { return r.Domain }

// MailboxKey groups by mailbox id, falling back to email for domain-level
// rows that carry no mailbox.
func MailboxKey(r MetricRecord) string {
	if r.MailboxID != "" {
		return r.MailboxID
	}
	return r.Email
}

// BucketKey returns a grouping function that keys records by the start date
// of their time bucket at the given granularity. Unparseable dates keep
// their raw value so no record is dropped.
func BucketKey(g Granularity) func(MetricRecord) string {
	return func(r MetricRecord) string {
		start, err := BucketStart(r.Date, g)
		if err != nil {
			return r.Date
		}
		return start.Format("2006-01-02")
	}
}

// BucketStart truncates a date to the start of its bucket: the day itself,
// the preceding Monday, or the first of the month.
func BucketStart(date string, g Granularity) (time.Time, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", date, err)
	}
	switch g {
	case GranularityWeek:
		// Weeks start Monday.
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset), nil
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	default:
		return t, nil
	}
}

// BucketLabel formats a human-readable label for a bucket start.
func BucketLabel(start time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		return "Week of " + start.Format("Jan 2")
	case GranularityMonth:
		return start.Format("Jan 2006")
	default:
		return start.Format("Jan 2")
	}
}
