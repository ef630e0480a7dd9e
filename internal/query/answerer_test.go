package query

import (
	"context"
	"errors"
	"testing"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []models.Expense {
	return []models.Expense{
		{ID: 1, Description: "Pizza", Amount: decimal.RequireFromString("12.5"), Date: models.NewDate(2024, 1, 3), Category: models.CategoryFood},
		{ID: 2, Description: "Cab", Amount: decimal.RequireFromString("30"), Date: models.NewDate(2024, 1, 5), Category: models.CategoryTravel, Subcategory: "Taxi"},
	}
}

func TestUserPrompt(t *testing.T) {
	prompt, err := UserPrompt("How much on food?", sample())
	require.NoError(t, err)
	assert.Equal(t,
		"Expenses data: "+
			`[{"id":1,"description":"Pizza","amount":12.5,"date":"2024-01-03","category":"food"},`+
			`{"id":2,"description":"Cab","amount":30,"date":"2024-01-05","category":"travel","subcategory":"Taxi"}]`+
			"\nQuestion: How much on food?",
		prompt)

	prompt, err = UserPrompt("Anything?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Expenses data: []\nQuestion: Anything?", prompt)
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected string
	}{
		{"verbatim reply", "  You spent 12.50 on food.\n", nil, "  You spent 12.50 on food.\n"},
		{"empty reply", "", nil, NoContentAnswer},
		{"whitespace reply", " \n ", nil, NoContentAnswer},
		{"call error", "", errors.New("500"), ErrorAnswer},
		{"no remote model", "", aiclient.ErrUnavailable, ErrorAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &aiclient.MockCompleter{Response: tt.response, Err: tt.err}
			answer, err := NewAnswerer(mock, 0, nil).Answer(context.Background(), "How much on food?", sample())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, answer)

			prompt := mock.Prompts()[0]
			assert.Equal(t, SystemPrompt, prompt.System)
			assert.Equal(t, DefaultTemperature, prompt.Temperature)
		})
	}
}

func TestAnswer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnswerer(&aiclient.MockCompleter{Err: context.Canceled}, 0.5, nil).Answer(ctx, "q", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
