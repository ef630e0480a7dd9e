package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/textutils"

	"github.com/shopspring/decimal"
)

// RemoteSystemPrompt asks for a bare number.
const RemoteSystemPrompt = "You are a financial analyst. Based on the monthly expense data provided, " +
	"predict the total expenses for the next month. Return only a number without any additional text."

// Remote asks the model for the next month's total.
type Remote struct {
	completer   aiclient.Completer
	temperature float32
	logger      logging.Logger
}

// NewRemote creates the remote forecast method.
func NewRemote(completer aiclient.Completer, temperature float32, logger logging.Logger) *Remote {
	if completer == nil {
		completer = aiclient.Unavailable{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Remote{completer: completer, temperature: temperature, logger: logger}
}

type monthPayload struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// UserPrompt renders the monthly series the way the model receives it.
func UserPrompt(months []models.MonthlyTotal) (string, error) {
	payload := make([]monthPayload, len(months))
	for i, m := range months {
		payload[i] = monthPayload{Month: m.Label, Total: m.Total.InexactFloat64()}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode monthly totals: %w", err)
	}
	return fmt.Sprintf("Monthly expense data for the past months: %s. Predict the total expenses for the next month.", data), nil
}

// Predict returns the first number in the model's reply. A failed call or a
// reply without a number yields the average of all months, and true.
func (r *Remote) Predict(ctx context.Context, months []models.MonthlyTotal) (decimal.Decimal, bool, error) {
	log := r.logger.WithFields(logging.F(logging.FieldMethod, MethodRemote))
	fallback := models.Average(models.Totals(months))

	user, err := UserPrompt(months)
	if err != nil {
		return decimal.Zero, false, err
	}

	text, err := r.completer.Complete(ctx, aiclient.Prompt{
		System:      RemoteSystemPrompt,
		User:        user,
		Temperature: r.temperature,
	})
	if err != nil {
		if ctx.Err() != nil {
			return decimal.Zero, false, ctx.Err()
		}
		log.WithError(err).Warn("Remote forecast failed, using average")
		return fallback, true, nil
	}

	num, ok := textutils.FirstNumber(strings.TrimSpace(text))
	if !ok {
		log.Warn("Remote forecast reply carried no number, using average",
			logging.F(logging.FieldReason, text))
		return fallback, true, nil
	}
	v, err := decimal.NewFromString(num)
	if err != nil {
		return fallback, true, nil
	}
	return v, false, nil
}
