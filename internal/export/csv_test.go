package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func expenses() []models.Expense {
	return []models.Expense{
		{ID: 1, Description: "Lunch", Amount: decimal.RequireFromString("12.5"), Date: models.NewDate(2024, 1, 10), Category: models.CategoryFood, Subcategory: "Work"},
		{ID: 2, Description: `Dinner, "fancy"`, Amount: decimal.RequireFromString("80"), Date: models.NewDate(2024, 1, 12), Category: models.CategoryFriends},
		{ID: 3, Description: "Train\nreturn", Amount: decimal.RequireFromString("23.40"), Date: models.NewDate(2024, 2, 1), Category: models.CategoryTravel},
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		filter   models.Filter
		expected string
	}{
		{"all", models.Filter{}, "expenses.csv"},
		{"month only", models.Filter{Month: intPtr(0)}, "expenses_month-0.csv"},
		{"year only", models.Filter{Year: intPtr(2024)}, "expenses_year-2024.csv"},
		{"both", models.Filter{Month: intPtr(11), Year: intPtr(2023)}, "expenses_month-11_year-2023.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Filename(tt.filter))
		})
	}
}

func TestWrite_Quoting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSV(',', nil).Write(&buf, expenses()))

	expected := "Description,Amount,Category,Subcategory,Date\n" +
		"Lunch,12.5,food,Work,2024-01-10\n" +
		`"Dinner, ""fancy""",80,friends,,2024-01-12` + "\n" +
		"\"Train\nreturn\",23.4,travel,,2024-02-01\n"
	assert.Equal(t, expected, buf.String())
}

func TestWrite_Semicolon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSV(';', nil).Write(&buf, expenses()[:1]))
	assert.Equal(t, "Description;Amount;Category;Subcategory;Date\nLunch;12.5;food;Work;2024-01-10\n", buf.String())
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSV(',', nil).Write(&buf, nil)
	assert.ErrorIs(t, err, trackererror.ErrNoExpenses)
	assert.Equal(t, "No expenses to export", err.Error())
}

func TestExportFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewCSV(',', nil)

	path, err := c.ExportFile(dir, models.Filter{Month: intPtr(0), Year: intPtr(2024)}, expenses())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "expenses_month-0_year-2024.csv"), path)

	inputs, err := c.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, inputs, 3)
	assert.Equal(t, models.ExpenseInput{Description: `Dinner, "fancy"`, Amount: "80", Date: "2024-01-12", Category: "friends"}, inputs[1])
	assert.Equal(t, "Train\nreturn", inputs[2].Description)

	for i, in := range inputs {
		e, err := models.NewExpense(in)
		require.NoError(t, err)
		assert.True(t, expenses()[i].Amount.Equal(e.Amount))
	}
}

func TestExportFile_Empty(t *testing.T) {
	dir := t.TempDir()
	_, err := NewCSV(',', nil).ExportFile(dir, models.Filter{}, nil)
	assert.ErrorIs(t, err, trackererror.ErrNoExpenses)

	_, statErr := os.Stat(filepath.Join(dir, "expenses.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRead_Invalid(t *testing.T) {
	_, err := NewCSV(',', nil).Read(strings.NewReader("Description,Amount\n\"unterminated,1\n"))
	assert.Error(t, err)

	_, err = NewCSV(',', nil).ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
