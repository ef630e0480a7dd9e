package list

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

func seed(t *testing.T, c *container.Container) {
	t.Helper()
	for _, in := range []models.ExpenseInput{
		{Description: "Groceries", Amount: "40", Date: "2024-01-05", Category: "food"},
		{Description: "Flight", Amount: "300", Date: "2024-02-10", Category: "travel"},
		{Description: "Gift", Amount: "25", Date: "2024-02-14", Category: "friends"},
	} {
		_, err := c.GetSession().AddExpense(context.Background(), in)
		require.NoError(t, err)
	}
}

func TestListFunc(t *testing.T) {
	tests := []struct {
		name     string
		month    string
		sort     string
		order    string
		contains []string
		excludes []string
		first    string
	}{
		{name: "all newest first", month: "all", sort: "date", order: "desc", contains: []string{"Groceries", "Flight", "Gift"}, first: "Gift"},
		{name: "february by amount", month: "1", sort: "amount", order: "asc", contains: []string{"Flight", "Gift"}, excludes: []string{"Groceries"}, first: "Gift"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContainer(t)
			seed(t, c)
			out := captureOutput(t)

			root.SharedFlags.Month, root.SharedFlags.Year = tt.month, "all"
			sortField, sortOrder, format = tt.sort, tt.order, "text"
			t.Cleanup(func() { root.SharedFlags.Month, root.SharedFlags.Year = "all", "all" })

			require.NoError(t, listFunc(context.Background(), c))
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out.String(), s)
			}
			lines := bytes.Split(out.Bytes(), []byte("\n"))
			require.Greater(t, len(lines), 1)
			assert.Contains(t, string(lines[1]), tt.first)
		})
	}
}

func TestListFunc_InvalidSort(t *testing.T) {
	c := newTestContainer(t)
	captureOutput(t)
	sortField, sortOrder = "name", "asc"
	t.Cleanup(func() { sortField, sortOrder = "date", "desc" })

	assert.Error(t, listFunc(context.Background(), c))
}
