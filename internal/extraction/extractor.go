// Package extraction turns a voice transcript or the recognized text of a
// receipt into a candidate expense using the remote model.
package extraction

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/dateutils"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/textutils"
	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/shopspring/decimal"
)

// Mode names the source of the text being extracted.
type Mode string

const (
	ModeVoice   Mode = "voice"
	ModeReceipt Mode = "receipt"
)

const (
	VoiceSystemPrompt = "You are a voice processing assistant for an expense tracker. " +
		"Extract the expense description, amount, and date from the user's voice input. " +
		"Use the keys description, amount and date (YYYY-MM-DD). " +
		"Output only a JSON object with the extracted information."

	ReceiptSystemPrompt = "You are a receipt processing assistant. " +
		"Extract the vendor name (as description), total amount, and date from the OCR text of a receipt. " +
		"Also suggest a category (food, travel, friends or others) and subcategory. " +
		"Use the keys description, amount, date (YYYY-MM-DD), category and subcategory. " +
		"Output only a JSON object with the extracted information."
)

// Extractor runs voice and receipt extraction. Unlike categorization there
// is no local fallback: a failed call is an ExtractionError.
type Extractor struct {
	completer   aiclient.Completer
	temperature float32
	logger      logging.Logger
	now         func() time.Time
}

// NewExtractor creates an extractor calling completer at temperature.
func NewExtractor(completer aiclient.Completer, temperature float32, logger logging.Logger) *Extractor {
	if completer == nil {
		completer = aiclient.Unavailable{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Extractor{
		completer:   completer,
		temperature: temperature,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the clock used to default a missing date.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// ExtractVoice extracts a candidate from a speech transcript.
func (e *Extractor) ExtractVoice(ctx context.Context, transcript string) (models.Candidate, error) {
	return e.extract(ctx, ModeVoice, VoiceSystemPrompt, transcript)
}

// ExtractReceipt extracts a candidate from the recognized text of a receipt.
func (e *Extractor) ExtractReceipt(ctx context.Context, ocrText string) (models.Candidate, error) {
	return e.extract(ctx, ModeReceipt, ReceiptSystemPrompt, ocrText)
}

type reply struct {
	Description json.RawMessage `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Date        json.RawMessage `json:"date"`
	Category    json.RawMessage `json:"category"`
	Subcategory json.RawMessage `json:"subcategory"`
}

func (e *Extractor) extract(ctx context.Context, mode Mode, system, text string) (models.Candidate, error) {
	log := e.logger.WithFields(logging.F(logging.FieldMode, string(mode)))

	if strings.TrimSpace(text) == "" {
		return models.Candidate{}, &trackererror.ExtractionError{Mode: string(mode), Reason: "no text to extract from"}
	}

	resp, err := e.completer.Complete(ctx, aiclient.Prompt{
		System:      system,
		User:        text,
		Temperature: e.temperature,
	})
	if err != nil {
		log.WithError(err).Warn("Extraction call failed")
		return models.Candidate{}, &trackererror.ExtractionError{Mode: string(mode), Reason: "remote call failed", Err: err}
	}
	if strings.TrimSpace(resp) == "" {
		return models.Candidate{}, &trackererror.ExtractionError{Mode: string(mode), Reason: "no response", Err: aiclient.ErrEmptyResponse}
	}

	raw, ok := textutils.FirstJSONObject(resp)
	if !ok {
		return models.Candidate{}, &trackererror.ExtractionError{Mode: string(mode), Reason: "no JSON object in response"}
	}

	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return models.Candidate{}, &trackererror.ExtractionError{Mode: string(mode), Reason: "could not decode response", Err: err}
	}

	c := models.Candidate{
		Description: strings.TrimSpace(stringValue(r.Description)),
		Amount:      coerceAmount(r.Amount),
		Date:        e.coerceDate(stringValue(r.Date)),
		Subcategory: strings.TrimSpace(stringValue(r.Subcategory)),
	}
	if cat := strings.TrimSpace(stringValue(r.Category)); cat != "" {
		c.Category = strings.ToLower(cat)
	}

	log.Info("Candidate extracted",
		logging.F(logging.FieldAmount, c.Amount.String()),
		logging.F(logging.FieldCategory, c.Category))
	return c, nil
}

// stringValue reads a JSON string; numbers and booleans are kept as their
// literal text and null or absent values become "".
func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	lit := strings.TrimSpace(string(raw))
	if lit == "null" || strings.HasPrefix(lit, "{") || strings.HasPrefix(lit, "[") {
		return ""
	}
	return lit
}

// coerceAmount accepts a JSON number or the numeric prefix of a string
// ("12.50 USD"). Anything else is zero.
func coerceAmount(raw json.RawMessage) decimal.Decimal {
	s := stringValue(raw)
	num, ok := textutils.LeadingNumber(s)
	if !ok {
		return decimal.Zero
	}
	num = strings.TrimSuffix(strings.TrimPrefix(num, "+"), ".")
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (e *Extractor) coerceDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return dateutils.ToISODate(dateutils.Today(e.now))
	}
	if normalized, ok := dateutils.NormalizeDate(s); ok {
		return normalized
	}
	return s
}
