package categorizer

import (
	"context"
	"errors"
	"testing"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordStrategy(t *testing.T) {
	s := NewKeywordStrategy(nil, nil)

	tests := []struct {
		description string
		expected    models.Category
	}{
		{"Pizza night", models.CategoryFood},
		{"COFFEE with Sam", models.CategoryFood},
		{"Morning café", models.CategoryFood},
		{"Uber to office", models.CategoryTravel},
		{"Metro card", models.CategoryTravel},
		{"Movie with friends", models.CategoryFriends},
		{"Wedding gift", models.CategoryFriends},
		{"Electricity bill", models.CategoryOthers},
		{"", models.CategoryOthers},
		// food is checked before travel
		{"Lunch on the train", models.CategoryFood},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			result, found, err := s.Categorize(context.Background(), tt.description)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.expected, result.Category)
			assert.Empty(t, result.Subcategory)
			assert.Equal(t, "Keyword", result.Source)
		})
	}
}

func TestParseKeywordSets(t *testing.T) {
	sets, err := ParseKeywordSets([]byte("categories:\n  - name: travel\n    keywords: [Tram]\n"))
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, []string{"tram"}, sets[0].Keywords)

	_, err = ParseKeywordSets([]byte("categories:\n  - name: rent\n    keywords: [flat]\n"))
	assert.Error(t, err)

	_, err = ParseKeywordSets([]byte("categories: ["))
	assert.Error(t, err)

	assert.Len(t, DefaultKeywordSets(), 3)
}

func TestAIStrategy(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		err         error
		found       bool
		category    models.Category
		subcategory string
	}{
		{"plain json", `{"category": "food", "subcategory": "Groceries"}`, nil, true, models.CategoryFood, "Groceries"},
		{"json with prose", "Sure! {\"category\": \"Travel\", \"subcategory\": \"Cab\"} hope it helps", nil, true, models.CategoryTravel, "Cab"},
		{"unknown category", `{"category": "Rent", "subcategory": "Flat"}`, nil, true, models.CategoryOthers, "Flat"},
		{"missing category", `{"subcategory": "Misc"}`, nil, true, models.CategoryOthers, "Misc"},
		{"empty reply", "", nil, false, "", ""},
		{"no json", "food, I think", nil, false, "", ""},
		{"broken json", `{"category": food}`, nil, false, "", ""},
		{"api error", "", errors.New("boom"), false, "", ""},
		{"unavailable", "", aiclient.ErrUnavailable, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &aiclient.MockCompleter{Response: tt.response, Err: tt.err}
			s := NewAIStrategy(mock, 0, logging.NewMockLogger())

			result, found, err := s.Categorize(context.Background(), "Weekly groceries")
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.category, result.Category)
				assert.Equal(t, tt.subcategory, result.Subcategory)
				assert.Equal(t, "AI", result.Source)
			}

			prompts := mock.Prompts()
			require.Len(t, prompts, 1)
			assert.Equal(t, SystemPrompt, prompts[0].System)
			assert.Equal(t, "Weekly groceries", prompts[0].User)
			assert.Equal(t, DefaultTemperature, prompts[0].Temperature)
		})
	}
}

func TestAIStrategy_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &aiclient.MockCompleter{Err: context.Canceled}
	_, found, err := NewAIStrategy(mock, 0.3, nil).Categorize(ctx, "Pizza")
	assert.False(t, found)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCategorizer_Chain(t *testing.T) {
	t.Run("remote answer wins", func(t *testing.T) {
		mock := &aiclient.MockCompleter{Response: `{"category":"friends","subcategory":"Party"}`}
		c := NewCategorizer(mock, 0.3, nil)

		result, err := c.Categorize(context.Background(), "pizza")
		require.NoError(t, err)
		assert.Equal(t, models.CategoryFriends, result.Category)
		assert.Equal(t, "Party", result.Subcategory)
	})

	t.Run("remote failure falls back to keywords", func(t *testing.T) {
		logger := logging.NewMockLogger()
		mock := &aiclient.MockCompleter{Err: errors.New("quota exceeded")}
		c := NewCategorizer(mock, 0.3, logger)

		result, err := c.Categorize(context.Background(), "Uber ride home")
		require.NoError(t, err)
		assert.Equal(t, models.CategoryTravel, result.Category)
		assert.Equal(t, "Keyword", result.Source)
		assert.True(t, logger.HasEntry("WARN", "Remote categorization failed, falling back"))
	})

	t.Run("no remote model", func(t *testing.T) {
		c := NewCategorizer(nil, 0, nil)
		result, err := c.Categorize(context.Background(), "Rent")
		require.NoError(t, err)
		assert.Equal(t, models.CategoryOthers, result.Category)
		assert.Equal(t, []string{"AI", "Keyword"}, c.Strategies())
	})

	t.Run("cancelled context surfaces", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := NewCategorizer(&aiclient.MockCompleter{Err: context.Canceled}, 0.3, nil)

		_, err := c.Categorize(ctx, "pizza")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type failingStrategy struct{}

func (failingStrategy) Name() string { return "Failing" }

func (failingStrategy) Categorize(context.Context, string) (models.CategoryResult, bool, error) {
	return models.CategoryResult{}, false, errors.New("broken")
}

func TestCategorizer_StrategyErrorContinues(t *testing.T) {
	logger := logging.NewMockLogger()
	c := NewCategorizerWithStrategies(logger, failingStrategy{})

	result, err := c.Categorize(context.Background(), "Dinner out")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFood, result.Category)
	assert.True(t, logger.HasEntry("WARN", "Categorization strategy failed"))
}
