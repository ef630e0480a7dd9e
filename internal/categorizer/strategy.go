package categorizer

import (
	"context"

	"fjacquet/expense-tracker/internal/models"
)

// CategorizationStrategy is one way of categorizing a description.
type CategorizationStrategy interface {
	// Categorize returns the result and whether this strategy produced one.
	// A strategy that cannot decide returns found=false so the next one in
	// the chain runs; err is reserved for failures worth surfacing.
	Categorize(ctx context.Context, description string) (result models.CategoryResult, found bool, err error)

	// Name identifies the strategy in logs and results.
	Name() string
}
