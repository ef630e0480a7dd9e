package root_test

import (
	"os"
	"testing"

	"fjacquet/expense-tracker/cmd/root"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "expense-tracker", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "expenses")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRun)
}

func TestRootCommand_Flags(t *testing.T) {
	for _, name := range []string{"backend", "month", "year", "log-level"} {
		assert.NotNil(t, root.Cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "m", root.Cmd.PersistentFlags().Lookup("month").Shorthand)
	assert.Equal(t, "all", root.Cmd.PersistentFlags().Lookup("year").DefValue)
}

func TestRootCommand_Run(t *testing.T) {
	assert.NotPanics(t, func() {
		root.Cmd.Run(&cobra.Command{}, []string{})
	})
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name        string
		month, year string
		expectError bool
		all         bool
	}{
		{name: "all", month: "all", year: "all", all: true},
		{name: "march 2024", month: "2", year: "2024"},
		{name: "bad month", month: "12", year: "all", expectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root.SharedFlags.Month, root.SharedFlags.Year = tt.month, tt.year
			t.Cleanup(func() { root.SharedFlags.Month, root.SharedFlags.Year = "all", "all" })

			f, err := root.Filter()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.all, f.IsAll())
		})
	}
}

func TestLoadConfig_BackendOverride(t *testing.T) {
	testChdir(t, t.TempDir())

	root.SharedFlags.Backend = "sqlite"
	t.Cleanup(func() { root.SharedFlags.Backend = "" })
	cfg, err := root.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)

	root.SharedFlags.Backend = "etcd"
	_, err = root.LoadConfig()
	assert.Error(t, err)
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})
}
