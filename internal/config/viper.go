// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Forecast methods.
const (
	ForecastRegression = "regression"
	ForecastRemote     = "remote"
	ForecastBoth       = "both"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	AI struct {
		Enabled          bool    `mapstructure:"enabled" yaml:"enabled"`
		Model            string  `mapstructure:"model" yaml:"model"`
		Temperature      float64 `mapstructure:"temperature" yaml:"temperature"`
		QueryTemperature float64 `mapstructure:"query_temperature" yaml:"query_temperature"`
		TimeoutSeconds   int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxRetries       int     `mapstructure:"max_retries" yaml:"max_retries"`
		RetryDelayMillis int     `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
		RelayURL         string  `mapstructure:"relay_url" yaml:"relay_url"`
		APIKey           string  `mapstructure:"api_key" yaml:"-"` // never serialized
	} `mapstructure:"ai" yaml:"ai"`

	Store struct {
		Backend    string `mapstructure:"backend" yaml:"backend"`
		Path       string `mapstructure:"path" yaml:"path"`
		Key        string `mapstructure:"key" yaml:"key"`
		SQLiteFile string `mapstructure:"sqlite_file" yaml:"sqlite_file"`
		Postgres   struct {
			Host     string `mapstructure:"host" yaml:"host"`
			Port     int    `mapstructure:"port" yaml:"port"`
			User     string `mapstructure:"user" yaml:"user"`
			Password string `mapstructure:"password" yaml:"-"`
			Database string `mapstructure:"database" yaml:"database"`
			SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
			MaxConns int    `mapstructure:"max_conns" yaml:"max_conns"`
		} `mapstructure:"postgres" yaml:"postgres"`
	} `mapstructure:"store" yaml:"store"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Forecast struct {
		Method       string  `mapstructure:"method" yaml:"method"`
		Epochs       int     `mapstructure:"epochs" yaml:"epochs"`
		LearningRate float64 `mapstructure:"learning_rate" yaml:"learning_rate"`
	} `mapstructure:"forecast" yaml:"forecast"`

	Relay struct {
		Listen        string `mapstructure:"listen" yaml:"listen"`
		MaxUploadMB   int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
		AllowedOrigin string `mapstructure:"allowed_origin" yaml:"allowed_origin"`
	} `mapstructure:"relay" yaml:"relay"`
}

// HasRemote reports whether a remote model can be reached, either directly
// with a credential or through a relay.
func (c *Config) HasRemote() bool {
	return c.AI.Enabled && (c.AI.APIKey != "" || c.AI.RelayURL != "")
}

// InitializeConfig loads defaults, then the optional config file, then
// EXPENSE_* environment variables. configFile overrides the search path
// when non-empty.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.expense-tracker")
		v.AddConfigPath(".expense-tracker")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("EXPENSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// The credential is read from its conventional, unprefixed variable.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}
	if err := v.BindEnv("store.postgres.password", "EXPENSE_STORE_POSTGRES_PASSWORD", "PGPASSWORD"); err != nil {
		fmt.Printf("Warning: failed to bind postgres password environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns the configuration built from defaults only, ignoring
// config files and the environment.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("default configuration does not decode: %v", err))
	}
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("ai.query_temperature", 0.5)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("ai.retry_delay_ms", 500)
	v.SetDefault("ai.relay_url", "")

	v.SetDefault("store.backend", BackendJSON)
	v.SetDefault("store.path", ".expense-tracker")
	v.SetDefault("store.key", "expenses")
	v.SetDefault("store.sqlite_file", "expenses.db")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.user", "postgres")
	v.SetDefault("store.postgres.database", "expenses")
	v.SetDefault("store.postgres.sslmode", "disable")
	v.SetDefault("store.postgres.max_conns", 4)

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("forecast.method", ForecastRegression)
	v.SetDefault("forecast.epochs", 1000)
	v.SetDefault("forecast.learning_rate", 0.1)

	v.SetDefault("relay.listen", "127.0.0.1:8787")
	v.SetDefault("relay.max_upload_mb", 10)
	v.SetDefault("relay.allowed_origin", "")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	switch config.Store.Backend {
	case BackendJSON, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("store.backend must be one of json, sqlite, postgres, got: %s", config.Store.Backend)
	}

	if strings.TrimSpace(config.Store.Key) == "" {
		return fmt.Errorf("store.key cannot be empty")
	}

	switch config.Forecast.Method {
	case ForecastRegression, ForecastRemote, ForecastBoth:
	default:
		return fmt.Errorf("forecast.method must be regression, remote or both, got: %s", config.Forecast.Method)
	}

	if config.Forecast.Epochs < 1 {
		return fmt.Errorf("forecast.epochs must be positive, got: %d", config.Forecast.Epochs)
	}

	if config.Forecast.LearningRate <= 0 || config.Forecast.LearningRate >= 1 {
		return fmt.Errorf("forecast.learning_rate must be in (0, 1), got: %f", config.Forecast.LearningRate)
	}

	if config.AI.Enabled {
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}

		if config.AI.MaxRetries < 1 || config.AI.MaxRetries > 10 {
			return fmt.Errorf("ai.max_retries must be between 1 and 10, got: %d", config.AI.MaxRetries)
		}

		if config.AI.Temperature < 0 || config.AI.Temperature > 2 || config.AI.QueryTemperature < 0 || config.AI.QueryTemperature > 2 {
			return fmt.Errorf("ai temperatures must be between 0 and 2")
		}
	}

	return nil
}
