package models

import (
	"encoding/json"
	"testing"

	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpense(t *testing.T) {
	tests := []struct {
		name        string
		input       ExpenseInput
		wantField   string
		wantMessage string
		wantCat     Category
	}{
		{
			name:    "valid with known category",
			input:   ExpenseInput{Description: " Lunch ", Amount: "12.50", Date: "2024-01-15", Category: "FOOD", Subcategory: " restaurant "},
			wantCat: CategoryFood,
		},
		{
			name:    "unknown category becomes others",
			input:   ExpenseInput{Description: "Plant", Amount: "3", Date: "2024-01-15", Category: "garden"},
			wantCat: CategoryOthers,
		},
		{
			name:    "empty category becomes others",
			input:   ExpenseInput{Description: "Plant", Amount: "3", Date: "2024-01-15"},
			wantCat: CategoryOthers,
		},
		{
			name:        "blank description",
			input:       ExpenseInput{Description: "   ", Amount: "3", Date: "2024-01-15"},
			wantField:   "description",
			wantMessage: MsgEmptyDescription,
		},
		{
			name:        "zero amount",
			input:       ExpenseInput{Description: "x", Amount: "0", Date: "2024-01-15"},
			wantField:   "amount",
			wantMessage: MsgInvalidAmount,
		},
		{
			name:        "negative amount",
			input:       ExpenseInput{Description: "x", Amount: "-4", Date: "2024-01-15"},
			wantField:   "amount",
			wantMessage: MsgInvalidAmount,
		},
		{
			name:        "non numeric amount",
			input:       ExpenseInput{Description: "x", Amount: "ten", Date: "2024-01-15"},
			wantField:   "amount",
			wantMessage: MsgInvalidAmount,
		},
		{
			name:        "missing date",
			input:       ExpenseInput{Description: "x", Amount: "1", Date: ""},
			wantField:   "date",
			wantMessage: MsgMissingDate,
		},
		{
			name:        "unparseable date",
			input:       ExpenseInput{Description: "x", Amount: "1", Date: "someday"},
			wantField:   "date",
			wantMessage: MsgMissingDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExpense(tt.input)
			if tt.wantField != "" {
				var verr *trackererror.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.Equal(t, tt.wantMessage, verr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.NotContains(t, got.Description, " ")
			assert.True(t, got.Amount.IsPositive())
			assert.Equal(t, "2024-01-15", got.Date.String())
			assert.NoError(t, got.Validate())
		})
	}
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryTravel, ParseCategory(" Travel "))
	assert.Equal(t, CategoryFriends, ParseCategory("friends"))
	assert.Equal(t, CategoryOthers, ParseCategory("shopping"))
	assert.Equal(t, CategoryOthers, ParseCategory(""))
}

func TestExpenseJSONRoundTrip(t *testing.T) {
	original := []Expense{
		{ID: 1700000000000, Description: "Coffee, large", Amount: decimal.RequireFromString("4.5"), Date: NewDate(2024, 1, 1), Category: CategoryFood},
		{ID: 1700000000001, Description: `Say "cheese"`, Amount: decimal.RequireFromString("19.99"), Date: NewDate(2023, 12, 31), Category: CategoryFriends, Subcategory: "party"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"2024-01-01"`)

	var reloaded []Expense
	require.NoError(t, json.Unmarshal(data, &reloaded))
	require.Len(t, reloaded, len(original))
	for i := range original {
		assert.Equal(t, original[i].ID, reloaded[i].ID)
		assert.Equal(t, original[i].Description, reloaded[i].Description)
		assert.True(t, original[i].Amount.Equal(reloaded[i].Amount))
		assert.Equal(t, original[i].Date.String(), reloaded[i].Date.String())
		assert.Equal(t, original[i].Category, reloaded[i].Category)
		assert.Equal(t, original[i].Subcategory, reloaded[i].Subcategory)
	}
}

func TestExpenseUnmarshal_NumericAmount(t *testing.T) {
	var e Expense
	require.NoError(t, json.Unmarshal([]byte(`{"id":5,"description":"Bus","amount":2.75,"date":"2024-02-03","category":"travel","subcategory":""}`), &e))
	assert.True(t, decimal.RequireFromString("2.75").Equal(e.Amount))
	assert.Equal(t, CategoryTravel, e.Category)
}

func TestCandidateInput(t *testing.T) {
	c := Candidate{Description: "Taxi", Amount: decimal.RequireFromString("23"), Date: "2024-05-05", Category: "travel"}
	e, err := NewExpense(c.Input())
	require.NoError(t, err)
	assert.Equal(t, CategoryTravel, e.Category)

	c.Amount = decimal.Zero
	_, err = NewExpense(c.Input())
	assert.True(t, trackererror.IsValidation(err))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 10.25 ")
	require.NoError(t, err)
	assert.Equal(t, "10.25", d.String())

	for _, bad := range []string{"", "0", "-1", "1e", "abc"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestAverage(t *testing.T) {
	amounts := []decimal.Decimal{decimal.NewFromInt(100), decimal.NewFromInt(200), decimal.NewFromInt(300)}
	assert.True(t, decimal.NewFromInt(200).Equal(Average(amounts)))
	assert.True(t, decimal.Zero.Equal(Average(nil)))
	assert.True(t, decimal.NewFromInt(600).Equal(Sum(amounts)))
}
