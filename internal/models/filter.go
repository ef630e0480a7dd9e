package models

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectorAll matches every month or year.
const SelectorAll = "all"

// Filter selects records by calendar month (0-11) and year. A nil selector
// means "all".
type Filter struct {
	Month *int
	Year  *int
}

// ParseFilter reads the textual selectors used on the command line: month is
// "all" or "0".."11" (January is 0), year is "all" or a four digit year.
func ParseFilter(month, year string) (Filter, error) {
	var f Filter

	month = strings.TrimSpace(strings.ToLower(month))
	if month != "" && month != SelectorAll {
		m, err := strconv.Atoi(month)
		if err != nil || m < 0 || m > 11 {
			return Filter{}, fmt.Errorf("invalid month selector %q: expected all or 0-11", month)
		}
		f.Month = &m
	}

	year = strings.TrimSpace(strings.ToLower(year))
	if year != "" && year != SelectorAll {
		y, err := strconv.Atoi(year)
		if err != nil || y < 1 || y > 9999 {
			return Filter{}, fmt.Errorf("invalid year selector %q: expected all or a year", year)
		}
		f.Year = &y
	}

	return f, nil
}

// IsAll reports whether the filter matches everything.
func (f Filter) IsAll() bool {
	return f.Month == nil && f.Year == nil
}

// Matches reports whether e falls inside the filter.
func (f Filter) Matches(e Expense) bool {
	if f.Month != nil && int(e.Date.Month())-1 != *f.Month {
		return false
	}
	if f.Year != nil && e.Date.Year() != *f.Year {
		return false
	}
	return true
}

// Apply returns the matching records in their original order. The input is
// not modified.
func (f Filter) Apply(expenses []Expense) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// MonthSelector renders the month selector ("all" or the 0-based index).
func (f Filter) MonthSelector() string {
	if f.Month == nil {
		return SelectorAll
	}
	return strconv.Itoa(*f.Month)
}

// YearSelector renders the year selector ("all" or the year).
func (f Filter) YearSelector() string {
	if f.Year == nil {
		return SelectorAll
	}
	return strconv.Itoa(*f.Year)
}
