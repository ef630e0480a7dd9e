// Package session is the controller the command layer drives. It validates
// input before any pipeline runs, keeps one busy flag per pipeline and
// applies only the newest categorization result.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fjacquet/expense-tracker/internal/export"
	"fjacquet/expense-tracker/internal/forecast"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/ocr"
	"fjacquet/expense-tracker/internal/speech"
	"fjacquet/expense-tracker/internal/store"
	"fjacquet/expense-tracker/internal/trackererror"
)

// MinDescriptionLength is the shortest description worth categorizing.
const MinDescriptionLength = 3

// Categorizer suggests a category for a description.
type Categorizer interface {
	Categorize(ctx context.Context, description string) (models.CategoryResult, error)
}

// Extractor turns transcripts and receipt text into candidates.
type Extractor interface {
	ExtractVoice(ctx context.Context, transcript string) (models.Candidate, error)
	ExtractReceipt(ctx context.Context, ocrText string) (models.Candidate, error)
}

// Forecaster predicts next month's total.
type Forecaster interface {
	Forecast(ctx context.Context, months []models.MonthlyTotal, method string) ([]forecast.Prediction, error)
}

// Answerer answers questions about the records.
type Answerer interface {
	Answer(ctx context.Context, question string, expenses []models.Expense) (string, error)
}

// Deps are the collaborators of a Session.
type Deps struct {
	Repository  store.Repository
	Categorizer Categorizer
	Extractor   Extractor
	Recognizer  ocr.TextRecognizer
	Transcriber speech.Transcriber
	Forecaster  Forecaster
	Answerer    Answerer
	CSV         *export.CSV
	Logger      logging.Logger
}

// Session coordinates the pipelines over one repository.
type Session struct {
	Deps
	gate    *Gate
	suggest Latest
}

func New(deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = logging.NewDiscardLogger()
	}
	if deps.CSV == nil {
		deps.CSV = export.NewCSV(',', deps.Logger)
	}
	return &Session{Deps: deps, gate: NewGate()}
}

// Gate exposes the busy flags.
func (s *Session) Gate() *Gate {
	return s.gate
}

// AddExpense validates in and stores it with a fresh id.
func (s *Session) AddExpense(ctx context.Context, in models.ExpenseInput) (models.Expense, error) {
	e, err := models.NewExpense(in)
	if err != nil {
		return models.Expense{}, err
	}
	stored, err := s.Repository.Add(ctx, e)
	if err != nil {
		return models.Expense{}, err
	}
	s.Logger.Info("Expense added",
		logging.F(logging.FieldExpenseID, stored.ID),
		logging.F(logging.FieldAmount, stored.Amount.String()),
		logging.F(logging.FieldCategory, stored.Category))
	return stored, nil
}

// Expenses returns the filtered view in insertion order.
func (s *Session) Expenses(ctx context.Context, filter models.Filter) ([]models.Expense, error) {
	all, err := s.Repository.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(all), nil
}

// List returns the filtered view sorted by field and order.
func (s *Session) List(ctx context.Context, filter models.Filter, field models.SortField, order models.SortOrder) ([]models.Expense, error) {
	view, err := s.Expenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	return models.SortExpenses(view, field, order), nil
}

// Clear destroys every record. confirmed must be true.
func (s *Session) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return trackererror.ErrNotConfirmed
	}
	if err := s.Repository.Clear(ctx); err != nil {
		return err
	}
	s.Logger.Info("All expenses cleared")
	return nil
}

// SuggestCategory categorizes description. A newer call supersedes an
// older one: the older call's context is cancelled and it returns ErrStale.
func (s *Session) SuggestCategory(ctx context.Context, description string) (models.CategoryResult, error) {
	if len([]rune(strings.TrimSpace(description))) < MinDescriptionLength {
		return models.CategoryResult{}, trackererror.ErrShortDescription
	}

	token, ctx := s.suggest.Begin(ctx)
	defer s.suggest.End(token)

	result, err := s.Categorizer.Categorize(ctx, description)
	if !s.suggest.IsLatest(token) {
		s.Logger.Debug("Dropping superseded categorization", logging.F(logging.FieldGeneration, token))
		return models.CategoryResult{}, trackererror.ErrStale
	}
	if err != nil {
		return models.CategoryResult{}, err
	}
	return result, nil
}

// ExtractVoice turns a typed or transcribed utterance into a candidate.
func (s *Session) ExtractVoice(ctx context.Context, transcript string) (models.Candidate, error) {
	release, err := s.gate.Acquire(PipelineVoice)
	if err != nil {
		return models.Candidate{}, err
	}
	defer release()
	return s.Extractor.ExtractVoice(ctx, transcript)
}

// Transcribe listens to audio and returns the final transcript.
func (s *Session) Transcribe(ctx context.Context, audio speech.Audio, onInterim func(speech.Fragment)) (string, error) {
	if s.Transcriber == nil {
		return "", fmt.Errorf("speech recognition is not available")
	}
	release, err := s.gate.Acquire(PipelineVoice)
	if err != nil {
		return "", err
	}
	defer release()
	return speech.Listen(ctx, s.Transcriber, audio, onInterim)
}

// ExtractReceipt recognizes doc and extracts a candidate from its text. The
// recognized text is returned as well so the caller can show it.
func (s *Session) ExtractReceipt(ctx context.Context, doc ocr.Document) (string, models.Candidate, error) {
	if s.Recognizer == nil {
		return "", models.Candidate{}, fmt.Errorf("receipt recognition is not available")
	}
	release, err := s.gate.Acquire(PipelineReceipt)
	if err != nil {
		return "", models.Candidate{}, err
	}
	defer release()

	text, err := s.Recognizer.Recognize(ctx, doc)
	if err != nil {
		return "", models.Candidate{}, &trackererror.ExtractionError{Mode: PipelineReceipt, Reason: "recognition failed", Err: err}
	}
	candidate, err := s.Extractor.ExtractReceipt(ctx, text)
	return text, candidate, err
}

// ExtractReceiptText extracts a candidate from already recognized text.
func (s *Session) ExtractReceiptText(ctx context.Context, text string) (models.Candidate, error) {
	release, err := s.gate.Acquire(PipelineReceipt)
	if err != nil {
		return models.Candidate{}, err
	}
	defer release()
	return s.Extractor.ExtractReceipt(ctx, text)
}

// SaveCandidate stores a candidate through the normal add path. A candidate
// without a category is categorized from its description first.
func (s *Session) SaveCandidate(ctx context.Context, c models.Candidate) (models.Expense, error) {
	in := c.Input()
	if c.Category == "" && len([]rune(strings.TrimSpace(c.Description))) >= MinDescriptionLength {
		result, err := s.Categorizer.Categorize(ctx, c.Description)
		if err != nil {
			return models.Expense{}, err
		}
		in.Category = string(result.Category)
		if in.Subcategory == "" {
			in.Subcategory = result.Subcategory
		}
	}
	return s.AddExpense(ctx, in)
}

// Forecast predicts next month's total from the full history, or from the
// filtered view when filter is non-nil.
func (s *Session) Forecast(ctx context.Context, filter *models.Filter, method string) ([]models.MonthlyTotal, []forecast.Prediction, error) {
	history, err := s.Repository.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if filter != nil {
		history = filter.Apply(history)
	}
	months := models.MonthlyTotals(history)
	if len(months) < 2 {
		return months, nil, trackererror.ErrInsufficientHistory
	}

	release, err := s.gate.Acquire(PipelineForecast)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	predictions, err := s.Forecaster.Forecast(ctx, months, method)
	if err != nil {
		return nil, nil, err
	}
	return months, predictions, nil
}

// Ask answers question over every stored record.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", trackererror.ErrEmptyQuestion
	}

	release, err := s.gate.Acquire(PipelineQuery)
	if err != nil {
		return "", err
	}
	defer release()

	all, err := s.Repository.List(ctx)
	if err != nil {
		return "", err
	}
	return s.Answerer.Answer(ctx, question, all)
}

// Export writes the filtered view to dir and returns the file path.
func (s *Session) Export(ctx context.Context, dir string, filter models.Filter) (string, error) {
	view, err := s.Expenses(ctx, filter)
	if err != nil {
		return "", err
	}
	return s.CSV.ExportFile(dir, filter, view)
}

// RowError is an import row rejected by validation.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Import reads a CSV in the export layout and adds every row. All rows are
// validated before the first one is added; any invalid row aborts the
// import.
func (s *Session) Import(ctx context.Context, path string) ([]models.Expense, error) {
	inputs, err := s.CSV.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var errs []error
	for i, in := range inputs {
		if _, err := models.NewExpense(in); err != nil {
			// row 1 is the header
			errs = append(errs, &RowError{Row: i + 2, Err: err})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	added := make([]models.Expense, 0, len(inputs))
	for _, in := range inputs {
		e, err := s.AddExpense(ctx, in)
		if err != nil {
			return added, err
		}
		added = append(added, e)
	}
	return added, nil
}
