// Package query answers natural-language questions about the stored
// expenses.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
)

const (
	SystemPrompt = "You are an expense analysis assistant. Answer questions about the user's expense data. " +
		"Be concise and focus on providing insights and data. " +
		"If appropriate, suggest ways to optimize spending habits."

	// NoContentAnswer is returned when the model replies with nothing.
	NoContentAnswer = "I couldn't analyze your expenses at this time. Please try again."

	// ErrorAnswer is returned when the call itself fails.
	ErrorAnswer = "I couldn't analyze your expenses at this time due to an error. Please try again."

	DefaultTemperature float32 = 0.5
)

// Answerer sends the question together with every record to the model.
type Answerer struct {
	completer   aiclient.Completer
	temperature float32
	logger      logging.Logger
}

func NewAnswerer(completer aiclient.Completer, temperature float32, logger logging.Logger) *Answerer {
	if completer == nil {
		completer = aiclient.Unavailable{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Answerer{completer: completer, temperature: temperature, logger: logger}
}

type expensePayload struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
}

// UserPrompt serializes the records and appends the question.
func UserPrompt(question string, expenses []models.Expense) (string, error) {
	payload := make([]expensePayload, len(expenses))
	for i, e := range expenses {
		payload[i] = expensePayload{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount.InexactFloat64(),
			Date:        e.Date.String(),
			Category:    string(e.Category),
			Subcategory: e.Subcategory,
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode expenses: %w", err)
	}
	return fmt.Sprintf("Expenses data: %s\nQuestion: %s", data, question), nil
}

// Answer returns the model's reply verbatim. It never fails for a live
// context: failures become one of the two fixed fallback answers.
func (a *Answerer) Answer(ctx context.Context, question string, expenses []models.Expense) (string, error) {
	user, err := UserPrompt(question, expenses)
	if err != nil {
		return "", err
	}

	text, err := a.completer.Complete(ctx, aiclient.Prompt{
		System:      SystemPrompt,
		User:        user,
		Temperature: a.temperature,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		a.logger.WithError(err).Warn("Query call failed",
			logging.F(logging.FieldCount, len(expenses)))
		return ErrorAnswer, nil
	}
	if strings.TrimSpace(text) == "" {
		a.logger.Warn("Query returned no content")
		return NoContentAnswer, nil
	}
	return text, nil
}
