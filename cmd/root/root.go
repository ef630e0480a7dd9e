// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"fjacquet/expense-tracker/internal/config"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Backend  string
	Month    string
	Year     string
	LogLevel string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "expense-tracker",
		Short: "A CLI tool to record, categorize and forecast personal expenses.",
		Long: `expense-tracker records personal expenses and reports on them.
It can suggest categories, read expenses from voice transcripts and receipts,
forecast next month's spend and answer questions about your history.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to expense-tracker!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
		},
	}

	// SharedFlags holds the persistent flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Out is where commands print results
	Out io.Writer = os.Stdout

	// In is where interactive prompts read from
	In io.Reader = os.Stdin

	// NewContainerFunc builds the dependency container; tests replace it.
	NewContainerFunc = container.NewContainer

	initOnce sync.Once
)

// Init initializes the root command and all flags
func Init() {
	initOnce.Do(initFlags)
}

func initFlags() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.Backend, "backend", "", "Storage backend: json, sqlite or postgres (default from config)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Month, "month", "m", models.SelectorAll, "Month filter: all or 0-11 (January is 0)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Year, "year", "y", models.SelectorAll, "Year filter: all or a four digit year")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

// LoadConfig reads the configuration and applies the persistent flag
// overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.InitializeConfig("")
	if err != nil {
		return nil, err
	}
	if SharedFlags.Backend != "" {
		switch SharedFlags.Backend {
		case config.BackendJSON, config.BackendSQLite, config.BackendPostgres:
			cfg.Store.Backend = SharedFlags.Backend
		default:
			return nil, fmt.Errorf("unknown backend %q: expected json, sqlite or postgres", SharedFlags.Backend)
		}
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	return cfg, nil
}

// Run builds the container, hands it to fn and releases it afterwards.
func Run(cmd *cobra.Command, fn func(ctx context.Context, c *container.Container) error) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	c, err := NewContainerFunc(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	Log = c.GetLogger()
	defer func() {
		if cerr := c.Close(); cerr != nil {
			Log.WithError(cerr).Warn("Failed to close resources")
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, c)
}

// Filter returns the month/year filter selected on the command line.
func Filter() (models.Filter, error) {
	return models.ParseFilter(SharedFlags.Month, SharedFlags.Year)
}
