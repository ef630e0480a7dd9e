// Package dateutils provides the date parsing and formatting used by the
// tracker. Expense dates are calendar dates without a time component.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts understood by ParseDate.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutUS        = "01/02/2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutRFC3339   = time.RFC3339
	DateLayoutWithMonth = "2-Jan-2006"
	MonthLabelLayout    = "Jan 2006"
)

// CommonFormats is the ordered list of layouts ParseDate tries. ISO comes
// first because that is what the remote model is asked to return.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutRFC3339,
	DateLayoutFull,
	DateLayoutEuropean,
	DateLayoutUS,
	DateLayoutWithMonth,
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var spaces = regexp.MustCompile(`\s+`)

// ParseDate parses s with the first matching layout in CommonFormats and
// returns the date truncated to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = CleanDateString(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// NormalizeDate rewrites a parseable date as YYYY-MM-DD. Unparseable input
// is returned unchanged with ok=false.
func NormalizeDate(s string) (string, bool) {
	t, err := ParseDate(s)
	if err != nil {
		return s, false
	}
	return ToISODate(t), true
}

// ToISODate formats t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// Day drops the time of day and location from t.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date according to now.
func Today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel renders a year/month pair the way reports show it ("Jan 2024").
func MonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(MonthLabelLayout)
}

// CleanDateString trims s and collapses internal whitespace.
func CleanDateString(s string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(s), " ")
}
