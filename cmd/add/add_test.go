package add

import (
	"bytes"
	"context"
	"testing"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/config"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := config.Defaults()
	cfg.Store.Path = t.TempDir()
	cfg.AI.Enabled = false
	c, err := container.NewContainerWithRepository(cfg, store.NewMemoryRepository(), logging.NewMockLogger())
	require.NoError(t, err)
	return c
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := root.Out
	root.Out = &buf
	t.Cleanup(func() { root.Out = old })
	return &buf
}

func setFlags(t *testing.T, d, a, dt, c, s string) {
	t.Helper()
	description, amount, date, category, subcategory = d, a, dt, c, s
	t.Cleanup(func() { description, amount, date, category, subcategory, noSuggest = "", "", "", "", "", false })
}

func TestAddCommand_Metadata(t *testing.T) {
	assert.Equal(t, "add", Cmd.Use)
	for _, name := range []string{"description", "amount", "date", "category", "subcategory", "no-suggest"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
}

func TestAddFunc(t *testing.T) {
	tests := []struct {
		name        string
		description string
		amount      string
		date        string
		category    string
		expectError string
		expected    models.Category
	}{
		{name: "explicit category", description: "Train ticket", amount: "12.50", date: "2024-03-01", category: "travel", expected: models.CategoryTravel},
		{name: "suggested from keywords", description: "Pizza night", amount: "20", date: "2024-03-01", expected: models.CategoryFood},
		{name: "short description falls back to others", description: "ab", amount: "3", date: "2024-03-01", expected: models.CategoryOthers},
		{name: "missing description", amount: "3", date: "2024-03-01", expectError: models.MsgEmptyDescription},
		{name: "negative amount", description: "Refund", amount: "-3", date: "2024-03-01", expectError: models.MsgInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContainer(t)
			out := captureOutput(t)
			setFlags(t, tt.description, tt.amount, tt.date, tt.category, "")

			err := addFunc(context.Background(), c)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectError, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), "Added expense #")

			stored, err := c.GetRepository().List(context.Background())
			require.NoError(t, err)
			require.Len(t, stored, 1)
			assert.Equal(t, tt.expected, stored[0].Category)
		})
	}
}

func TestAddFunc_DefaultsToToday(t *testing.T) {
	c := newTestContainer(t)
	captureOutput(t)
	setFlags(t, "Coffee", "3.20", "", "food", "")

	require.NoError(t, addFunc(context.Background(), c))
	stored, err := c.GetRepository().List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Date.IsZero())
}
