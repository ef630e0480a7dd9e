// Package models holds the tracker's domain types: expense records, the
// closed category set, filters and the derived aggregate views.
package models

import (
	"strings"

	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/shopspring/decimal"
)

// Validation messages shown to the user.
const (
	MsgEmptyDescription = "Please enter a description"
	MsgInvalidAmount    = "Please enter a valid amount"
	MsgMissingDate      = "Please select a date"
)

// Expense is one stored expense record.
type Expense struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Category    Category        `json:"category"`
	Subcategory string          `json:"subcategory"`
}

// ExpenseInput is raw user input for a new expense, before validation.
type ExpenseInput struct {
	Description string
	Amount      string
	Date        string
	Category    string
	Subcategory string
}

// NewExpense validates input and builds an Expense without an id. The id is
// assigned by the repository on add.
func NewExpense(in ExpenseInput) (Expense, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Expense{}, &trackererror.ValidationError{Field: "description", Reason: MsgEmptyDescription}
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, &trackererror.ValidationError{Field: "amount", Reason: MsgInvalidAmount}
	}

	if strings.TrimSpace(in.Date) == "" {
		return Expense{}, &trackererror.ValidationError{Field: "date", Reason: MsgMissingDate}
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Expense{}, &trackererror.ValidationError{Field: "date", Reason: MsgMissingDate}
	}

	return Expense{
		Description: desc,
		Amount:      amount,
		Date:        date,
		Category:    ParseCategory(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
	}, nil
}

// Validate checks the stored-record invariants.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return &trackererror.ValidationError{Field: "description", Reason: MsgEmptyDescription}
	}
	if !e.Amount.IsPositive() {
		return &trackererror.ValidationError{Field: "amount", Reason: MsgInvalidAmount}
	}
	if e.Date.IsZero() {
		return &trackererror.ValidationError{Field: "date", Reason: MsgMissingDate}
	}
	return nil
}

// Normalized returns e with a trimmed description/subcategory and a category
// inside the closed set.
func (e Expense) Normalized() Expense {
	e.Description = strings.TrimSpace(e.Description)
	e.Subcategory = strings.TrimSpace(e.Subcategory)
	e.Category = ParseCategory(string(e.Category))
	return e
}

// Candidate is a structured expense proposed by voice or receipt extraction.
// It becomes an Expense only through NewExpense.
type Candidate struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Subcategory string          `json:"subcategory,omitempty"`
}

// Input converts the candidate into user input for NewExpense.
func (c Candidate) Input() ExpenseInput {
	return ExpenseInput{
		Description: c.Description,
		Amount:      c.Amount.String(),
		Date:        c.Date,
		Category:    c.Category,
		Subcategory: c.Subcategory,
	}
}
