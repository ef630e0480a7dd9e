package categorizer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/textutils"
)

// AIStrategy asks the remote model for a category. Every failure mode
// (transport error, empty reply, no JSON object, undecodable JSON) reports
// found=false so the chain falls through to the keyword strategy.
type AIStrategy struct {
	completer   aiclient.Completer
	temperature float32
	logger      logging.Logger
}

// NewAIStrategy creates the remote categorization strategy.
func NewAIStrategy(completer aiclient.Completer, temperature float32, logger logging.Logger) *AIStrategy {
	if completer == nil {
		completer = aiclient.Unavailable{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &AIStrategy{completer: completer, temperature: temperature, logger: logger}
}

func (s *AIStrategy) Name() string {
	return "AI"
}

type aiReply struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

func (s *AIStrategy) Categorize(ctx context.Context, description string) (models.CategoryResult, bool, error) {
	log := s.logger.WithFields(logging.F(logging.FieldStrategy, s.Name()))

	text, err := s.completer.Complete(ctx, aiclient.Prompt{
		System:      SystemPrompt,
		User:        description,
		Temperature: s.temperature,
	})
	if err != nil {
		if ctx.Err() != nil {
			return models.CategoryResult{}, false, ctx.Err()
		}
		if errors.Is(err, aiclient.ErrUnavailable) {
			log.Debug("Remote model not configured, skipping")
		} else {
			log.WithError(err).Warn("Remote categorization failed, falling back")
		}
		return models.CategoryResult{}, false, nil
	}

	raw, ok := textutils.FirstJSONObject(text)
	if !ok {
		log.Warn("Remote reply carried no JSON object", logging.F(logging.FieldReason, truncate(text, 80)))
		return models.CategoryResult{}, false, nil
	}

	var reply aiReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		log.WithError(err).Warn("Could not decode remote reply")
		return models.CategoryResult{}, false, nil
	}

	result := models.CategoryResult{
		Category:    models.ParseCategory(reply.Category),
		Subcategory: strings.TrimSpace(reply.Subcategory),
		Source:      s.Name(),
	}
	log.Debug("Description categorized by remote model",
		logging.F(logging.FieldCategory, result.Category),
		logging.F(logging.FieldSubcategory, result.Subcategory))
	return result, true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
