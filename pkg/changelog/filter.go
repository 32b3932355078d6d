package changelog

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FilterLimit keeps the first n versions. n <= 0 keeps everything.
func FilterLimit(versions []Version, n int) []Version {
	if n <= 0 || n >= len(versions) {
		return versions
	}
	return versions[:n]
}

// FilterSince keeps versions released on or after cutoff. Undated versions
// are kept. A zero cutoff keeps everything.
func FilterSince(versions []Version, cutoff time.Time) []Version {
	if cutoff.IsZero() {
		return versions
	}
	out := make([]Version, 0, len(versions))
	for _, v := range versions {
		if v.Date == nil || !v.Date.Before(cutoff) {
			out = append(out, v)
		}
	}
	return out
}

// FilterOutNoChange drops versions carrying the no-user-facing-changes marker.
func FilterOutNoChange(versions []Version) []Version {
	out := make([]Version, 0, len(versions))
	for _, v := range versions {
		if !IsNoChange(v.Content) {
			out = append(out, v)
		}
	}
	return out
}

// Combine joins versions back into one Markdown document.
func Combine(versions []Version) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = v.Content
	}
	return strings.Join(parts, "\n\n")
}

// DateFilter names a relative release-date window.
type DateFilter string

const (
	DateAll            DateFilter = "all"
	DateLast7Days      DateFilter = "last-7-days"
	DateLast30Days     DateFilter = "last-30-days"
	DateLast90Days     DateFilter = "last-90-days"
	DateAfterLastVisit DateFilter = "after-last-visit"
)

// DateFilters lists the accepted filter names.
var DateFilters = []DateFilter{DateAll, DateLast7Days, DateLast30Days, DateLast90Days, DateAfterLastVisit}

// ParseDateFilter validates a filter name.
func ParseDateFilter(s string) (DateFilter, error) {
	for _, f := range DateFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown date filter %q", s)
}

// Cutoff returns the earliest release date admitted by f at now. The zero
// time means no cutoff. lastVisit is only used by DateAfterLastVisit.
func (f DateFilter) Cutoff(now, lastVisit time.Time) time.Time {
	const day = 24 * time.Hour
	switch f {
	case DateLast7Days:
		return now.Add(-7 * day)
	case DateLast30Days:
		return now.Add(-30 * day)
	case DateLast90Days:
		return now.Add(-90 * day)
	case DateAfterLastVisit:
		return lastVisit
	default:
		return time.Time{}
	}
}

var isoDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// FormatDates rewrites ISO dates (2025-10-01) in markdown to the
// human-readable form "01 Oct 2025". Invalid dates are left unchanged.
func FormatDates(markdown string) string {
	return isoDate.ReplaceAllStringFunc(markdown, func(s string) string {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return s
		}
		return t.Format("02 Jan 2006")
	})
}
