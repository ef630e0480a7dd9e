package importcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/config"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/logging"
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

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportFunc(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError bool
		stored      int
	}{
		{
			name:    "valid rows",
			content: "Description,Amount,Category,Subcategory,Date\nLunch,12.50,food,,2024-01-02\nBus,2.80,travel,Commute,2024-01-03\n",
			stored:  2,
		},
		{
			name:        "one invalid row stores nothing",
			content:     "Description,Amount,Category,Subcategory,Date\nLunch,12.50,food,,2024-01-02\nBus,abc,travel,,2024-01-03\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContainer(t)
			out := captureOutput(t)

			err := importFunc(context.Background(), c, writeCSV(t, tt.content))
			stored, lerr := c.GetRepository().List(context.Background())
			require.NoError(t, lerr)
			assert.Len(t, stored, tt.stored)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "row 3")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), "Imported 2 expenses")
		})
	}
}
