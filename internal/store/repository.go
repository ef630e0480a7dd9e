// Package store persists expense records. Every medium implements
// Repository, so the pipelines never see where records live.
package store

import (
	"context"

	"fjacquet/expense-tracker/internal/models"
)

// Repository is the ordered collection of expense records plus its
// persistence mirror.
type Repository interface {
	// Add assigns a fresh id to e, appends it and persists the collection.
	// Invalid records are rejected without mutating anything.
	Add(ctx context.Context, e models.Expense) (models.Expense, error)

	// List returns every record in insertion order.
	List(ctx context.Context) ([]models.Expense, error)

	// Clear removes every record and the persisted data.
	Clear(ctx context.Context) error

	// Persist flushes the in-memory state to the medium. Media that write
	// through on every call treat it as a no-op.
	Persist(ctx context.Context) error

	// Reload replaces the in-memory state with the persisted one.
	Reload(ctx context.Context) error

	Close() error
}
