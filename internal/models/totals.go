package models

import (
	"sort"
	"time"

	"fjacquet/expense-tracker/internal/dateutils"

	"github.com/shopspring/decimal"
)

// MonthlyTotal is the spend of one calendar month.
type MonthlyTotal struct {
	Label string          `json:"month" yaml:"month"`
	Year  int             `json:"-" yaml:"-"`
	Month time.Month      `json:"-" yaml:"-"`
	Total decimal.Decimal `json:"total" yaml:"total"`
}

// MonthlyTotals groups expenses by (year, month) and returns one entry per
// month present, oldest first.
func MonthlyTotals(expenses []Expense) []MonthlyTotal {
	type key struct {
		year  int
		month time.Month
	}
	sums := make(map[key]decimal.Decimal)
	for _, e := range expenses {
		k := key{e.Date.Year(), e.Date.Month()}
		sums[k] = sums[k].Add(e.Amount)
	}

	out := make([]MonthlyTotal, 0, len(sums))
	for k, total := range sums {
		out = append(out, MonthlyTotal{
			Label: dateutils.MonthLabel(k.year, k.month),
			Year:  k.year,
			Month: k.month,
			Total: total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// Totals extracts the totals of a monthly series, in order.
func Totals(months []MonthlyTotal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(months))
	for i, m := range months {
		out[i] = m.Total
	}
	return out
}

// CategoryTotals maps every category to the summed amount of its records.
// All four categories are present; empty or unknown categories count as
// others.
type CategoryTotals map[Category]decimal.Decimal

// SumByCategory computes CategoryTotals over expenses.
func SumByCategory(expenses []Expense) CategoryTotals {
	totals := make(CategoryTotals, len(Categories))
	for _, c := range Categories {
		totals[c] = decimal.Zero
	}
	for _, e := range expenses {
		c := ParseCategory(string(e.Category))
		totals[c] = totals[c].Add(e.Amount)
	}
	return totals
}

// Total sums every category.
func (t CategoryTotals) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t {
		sum = sum.Add(v)
	}
	return sum
}
