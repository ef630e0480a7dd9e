// Package container provides dependency injection for the expense tracker.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/categorizer"
	"fjacquet/expense-tracker/internal/config"
	"fjacquet/expense-tracker/internal/export"
	"fjacquet/expense-tracker/internal/extraction"
	"fjacquet/expense-tracker/internal/forecast"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/ocr"
	"fjacquet/expense-tracker/internal/query"
	"fjacquet/expense-tracker/internal/relay"
	"fjacquet/expense-tracker/internal/report"
	"fjacquet/expense-tracker/internal/session"
	"fjacquet/expense-tracker/internal/speech"
	"fjacquet/expense-tracker/internal/store"
)

// RemoteMode describes how the container reaches the model.
type RemoteMode string

const (
	RemoteDirect RemoteMode = "direct"
	RemoteRelay  RemoteMode = "relay"
	RemoteNone   RemoteMode = "none"
)

// Container holds all application dependencies. It is immutable after
// creation; dependencies are reached through getters.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	repository store.Repository
	mode       RemoteMode

	completer   aiclient.Completer
	recognizer  ocr.TextRecognizer
	transcriber speech.Transcriber
	categorizer *categorizer.Categorizer
	forecaster  *forecast.Forecaster
	reports     *report.Generator
	session     *session.Session

	gemini *aiclient.GeminiCompleter
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	repo, err := store.Open(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	c, err := NewContainerWithRepository(cfg, repo, logger)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithRepository wires everything around an existing
// repository.
func NewContainerWithRepository(cfg *config.Config, repo store.Repository, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	c := &Container{logger: logger, config: cfg, repository: repo}
	if err := c.wireRemote(); err != nil {
		return nil, err
	}

	temperature := float32(cfg.AI.Temperature)
	c.categorizer = categorizer.NewCategorizer(c.completer, temperature, logger)
	c.forecaster = forecast.NewForecaster(forecast.GradientDescent{
		Epochs:       cfg.Forecast.Epochs,
		LearningRate: cfg.Forecast.LearningRate,
		Tolerance:    forecast.DefaultGradientDescent().Tolerance,
	}, c.completer, temperature, logger)
	c.reports = report.NewGenerator(logger)

	delimiter := ','
	if cfg.CSV.Delimiter != "" {
		delimiter = []rune(cfg.CSV.Delimiter)[0]
	}

	c.session = session.New(session.Deps{
		Repository:  repo,
		Categorizer: c.categorizer,
		Extractor:   extraction.NewExtractor(c.completer, temperature, logger),
		Recognizer:  c.recognizer,
		Transcriber: c.transcriber,
		Forecaster:  c.forecaster,
		Answerer:    query.NewAnswerer(c.completer, float32(cfg.AI.QueryTemperature), logger),
		CSV:         export.NewCSV(delimiter, logger),
		Logger:      logger,
	})

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldBackend, cfg.Store.Backend),
		logging.F("remote", string(c.mode)))
	return c, nil
}

func (c *Container) geminiOptions() aiclient.GeminiOptions {
	return aiclient.GeminiOptions{
		APIKey:     c.config.AI.APIKey,
		Model:      c.config.AI.Model,
		Timeout:    time.Duration(c.config.AI.TimeoutSeconds) * time.Second,
		MaxRetries: c.config.AI.MaxRetries,
		RetryDelay: time.Duration(c.config.AI.RetryDelayMillis) * time.Millisecond,
	}
}

// wireRemote picks the direct Gemini client when a key is present, the
// relay when a relay URL is configured, and otherwise the unavailable
// completer so that every pipeline uses its fallback.
func (c *Container) wireRemote() error {
	pdf := ocr.NewPDFRecognizer(c.logger)
	opts := c.geminiOptions()

	switch {
	case c.config.AI.Enabled && c.config.AI.APIKey != "":
		gemini, err := aiclient.NewGeminiCompleter(context.Background(), opts, c.logger)
		if err != nil {
			return err
		}
		c.gemini = gemini
		c.completer = gemini
		c.recognizer = &ocr.Router{PDF: pdf, Image: ocr.NewGeminiRecognizer(gemini.Client(), opts, c.logger)}
		c.transcriber = speech.NewGeminiTranscriber(gemini.Client(), opts, c.logger)
		c.mode = RemoteDirect

	case c.config.AI.Enabled && c.config.AI.RelayURL != "":
		client := aiclient.NewRelayClient(c.config.AI.RelayURL, opts, c.logger)
		c.completer = client
		c.recognizer = &ocr.Router{PDF: pdf, Image: ocr.NewRelayRecognizer(client)}
		c.transcriber = speech.NewRelayTranscriber(c.config.AI.RelayURL, c.logger)
		c.mode = RemoteRelay

	default:
		c.completer = aiclient.Unavailable{}
		c.recognizer = &ocr.Router{PDF: pdf}
		c.mode = RemoteNone
		c.logger.Info("AI features disabled, using local fallbacks")
	}
	return nil
}

// NewRelayServer builds a relay around this container's direct model
// connection. It requires the credential.
func (c *Container) NewRelayServer() (*relay.Server, error) {
	if c.mode != RemoteDirect {
		return nil, fmt.Errorf("the relay needs GEMINI_API_KEY and ai.enabled")
	}
	return relay.NewServer(c.completer, c.recognizer, c.transcriber, relay.Options{
		MaxUploadBytes: int64(c.config.Relay.MaxUploadMB) << 20,
		AllowedOrigin:  c.config.Relay.AllowedOrigin,
	}, c.logger), nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRepository returns the record store.
func (c *Container) GetRepository() store.Repository {
	return c.repository
}

// GetSession returns the controller the commands drive.
func (c *Container) GetSession() *session.Session {
	return c.session
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetReportGenerator returns the report renderer.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}

// GetCompleter returns the remote model client in use.
func (c *Container) GetCompleter() aiclient.Completer {
	return c.completer
}

// RemoteMode reports how the model is reached.
func (c *Container) RemoteMode() RemoteMode {
	return c.mode
}

// Close releases the repository and the model client.
func (c *Container) Close() error {
	var firstErr error
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.repository.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	c.logger.Debug("Container closed")
	return firstErr
}
