package container

import (
	"context"
	"testing"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/config"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Defaults()
	cfg.Store.Path = t.TempDir()
	cfg.Log.Level = "error"
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) *config.Config
		expectError bool
		errorMsg    string
		mode        RemoteMode
	}{
		{
			name:        "nil config",
			config:      func(*testing.T) *config.Config { return nil },
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "defaults without credential",
			config: testConfig,
			mode:   RemoteNone,
		},
		{
			name: "AI disabled",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(t)
				cfg.AI.Enabled = false
				cfg.AI.RelayURL = "http://127.0.0.1:1"
				return cfg
			},
			mode: RemoteNone,
		},
		{
			name: "relay configured",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(t)
				cfg.AI.RelayURL = "http://127.0.0.1:8787"
				return cfg
			},
			mode: RemoteRelay,
		},
		{
			name: "sqlite backend",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(t)
				cfg.Store.Backend = config.BackendSQLite
				return cfg
			},
			mode: RemoteNone,
		},
		{
			name: "unknown backend",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(t)
				cfg.Store.Backend = "etcd"
				return cfg
			},
			expectError: true,
			errorMsg:    "unknown store backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(tt.config(t))
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, c.Close()) }()

			assert.Equal(t, tt.mode, c.RemoteMode())
			assert.NotNil(t, c.GetSession())
			assert.NotNil(t, c.GetRepository())
			assert.NotNil(t, c.GetReportGenerator())
			assert.NotNil(t, c.GetLogger())
			assert.Equal(t, []string{"AI", "Keyword"}, c.GetCategorizer().Strategies())
		})
	}
}

func TestContainer_FallbacksWithoutRemote(t *testing.T) {
	c, err := NewContainerWithRepository(testConfig(t), store.NewMemoryRepository(), logging.NewMockLogger())
	require.NoError(t, err)

	assert.Equal(t, aiclient.Unavailable{}, c.GetCompleter())

	result, err := c.GetSession().SuggestCategory(context.Background(), "Team lunch")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFood, result.Category)

	_, err = c.NewRelayServer()
	assert.Error(t, err)
}

func TestNewContainerWithRepository_NilRepository(t *testing.T) {
	_, err := NewContainerWithRepository(testConfig(t), nil, nil)
	assert.Error(t, err)
}
