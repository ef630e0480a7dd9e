package models

import (
	"fmt"
	"sort"
	"strings"
)

// SortField selects the key used to order a list of expenses.
type SortField string

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSort validates the textual sort options. Empty values default to
// newest first.
func ParseSort(field, order string) (SortField, SortOrder, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	if f == "" {
		f = SortByDate
	}
	if f != SortByDate && f != SortByAmount {
		return "", "", fmt.Errorf("invalid sort field %q: expected date or amount", field)
	}

	o := SortOrder(strings.ToLower(strings.TrimSpace(order)))
	if o == "" {
		o = Descending
	}
	if o != Ascending && o != Descending {
		return "", "", fmt.Errorf("invalid sort order %q: expected asc or desc", order)
	}
	return f, o, nil
}

// SortExpenses returns a sorted copy. Ties keep their stored order.
func SortExpenses(expenses []Expense, field SortField, order SortOrder) []Expense {
	out := make([]Expense, len(expenses))
	copy(out, expenses)

	less := func(a, b Expense) int {
		if field == SortByAmount {
			return a.Amount.Cmp(b.Amount)
		}
		return a.Date.Compare(b.Date.Time)
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}
