package store

import (
	"context"

	"fjacquet/expense-tracker/internal/models"
)

// MockRepository is an in-memory Repository with error injection for tests.
type MockRepository struct {
	Expenses []models.Expense

	AddError     error
	ListError    error
	ClearError   error
	PersistError error
	ReloadError  error

	nextID int64
}

func (m *MockRepository) Add(_ context.Context, e models.Expense) (models.Expense, error) {
	if m.AddError != nil {
		return models.Expense{}, m.AddError
	}
	e = e.Normalized()
	if err := e.Validate(); err != nil {
		return models.Expense{}, err
	}
	m.nextID++
	e.ID = m.nextID
	m.Expenses = append(m.Expenses, e)
	return e, nil
}

func (m *MockRepository) List(context.Context) ([]models.Expense, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]models.Expense, len(m.Expenses))
	copy(out, m.Expenses)
	return out, nil
}

func (m *MockRepository) Clear(context.Context) error {
	if m.ClearError != nil {
		return m.ClearError
	}
	m.Expenses = nil
	return nil
}

func (m *MockRepository) Persist(context.Context) error { return m.PersistError }
func (m *MockRepository) Reload(context.Context) error  { return m.ReloadError }
func (m *MockRepository) Close() error                  { return nil }
