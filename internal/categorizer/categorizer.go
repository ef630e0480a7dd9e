// Package categorizer assigns one of the closed expense categories to a free
// text description. Strategies are tried in order:
// 1. the remote model (AIStrategy)
// 2. case-insensitive keyword matching (KeywordStrategy), which always answers
package categorizer

import (
	"context"
	"strings"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
)

// Categorizer runs its strategies in order and returns the first result.
type Categorizer struct {
	strategies []CategorizationStrategy
	keyword    *KeywordStrategy
	logger     logging.Logger
}

// NewCategorizer builds the standard AI-then-keyword chain.
func NewCategorizer(completer aiclient.Completer, temperature float32, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	keyword := NewKeywordStrategy(nil, logger)
	return &Categorizer{
		strategies: []CategorizationStrategy{
			NewAIStrategy(completer, temperature, logger),
			keyword,
		},
		keyword: keyword,
		logger:  logger,
	}
}

// NewCategorizerWithStrategies builds a chain from explicit strategies. The
// keyword strategy is appended as the final safety net.
func NewCategorizerWithStrategies(logger logging.Logger, strategies ...CategorizationStrategy) *Categorizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	keyword := NewKeywordStrategy(nil, logger)
	return &Categorizer{
		strategies: append(append([]CategorizationStrategy{}, strategies...), keyword),
		keyword:    keyword,
		logger:     logger,
	}
}

// Categorize never fails for a non-cancelled context: when every remote
// attempt gives up the keyword strategy decides. The only error returned is
// the context's.
func (c *Categorizer) Categorize(ctx context.Context, description string) (models.CategoryResult, error) {
	description = strings.TrimSpace(description)
	for _, strategy := range c.strategies {
		result, found, err := strategy.Categorize(ctx, description)
		if err != nil {
			if ctx.Err() != nil {
				return models.CategoryResult{}, ctx.Err()
			}
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.F(logging.FieldStrategy, strategy.Name()))
			continue
		}
		if found {
			c.logger.Info("Expense categorized",
				logging.F(logging.FieldStrategy, strategy.Name()),
				logging.F(logging.FieldCategory, result.Category),
				logging.F(logging.FieldSubcategory, result.Subcategory))
			return result, nil
		}
	}
	return c.keyword.Classify(description), nil
}

// Strategies returns the strategy names in evaluation order.
func (c *Categorizer) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}
