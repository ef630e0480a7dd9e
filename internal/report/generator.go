// Package report renders expense views and summaries for the terminal and
// for machine consumption.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/expense-tracker/internal/forecast"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// CategoryLine is one row of the category breakdown.
type CategoryLine struct {
	Category string `json:"category" yaml:"category"`
	Total    string `json:"total" yaml:"total"`
}

// MonthLine is one row of the monthly series.
type MonthLine struct {
	Month string `json:"month" yaml:"month"`
	Total string `json:"total" yaml:"total"`
}

// Summary aggregates a filtered view.
type Summary struct {
	Month      string         `json:"month" yaml:"month"`
	Year       string         `json:"year" yaml:"year"`
	Count      int            `json:"count" yaml:"count"`
	Total      string         `json:"total" yaml:"total"`
	Categories []CategoryLine `json:"categories" yaml:"categories"`
	Months     []MonthLine    `json:"months" yaml:"months"`
}

// NewSummary computes the summary of expenses, which must already be
// filtered by filter.
func NewSummary(filter models.Filter, expenses []models.Expense) Summary {
	totals := models.SumByCategory(expenses)
	s := Summary{
		Month: filter.MonthSelector(),
		Year:  filter.YearSelector(),
		Count: len(expenses),
		Total: models.FormatAmount(totals.Total()),
	}
	for _, c := range models.Categories {
		s.Categories = append(s.Categories, CategoryLine{Category: string(c), Total: models.FormatAmount(totals[c])})
	}
	for _, m := range models.MonthlyTotals(expenses) {
		s.Months = append(s.Months, MonthLine{Month: m.Label, Total: models.FormatAmount(m.Total)})
	}
	return s
}

// Generator renders reports.
type Generator struct {
	printer *message.Printer
	title   cases.Caser
	logger  logging.Logger
}

// NewGenerator creates a generator using English number formatting.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Generator{
		printer: message.NewPrinter(language.English),
		title:   cases.Title(language.English),
		logger:  logger.WithFields(logging.F(logging.FieldComponent, "report")),
	}
}

// Amount formats d with two decimals and thousands grouping.
func (g *Generator) Amount(d decimal.Decimal) string {
	return g.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// CategoryTitle renders a category for display ("food" -> "Food").
func (g *Generator) CategoryTitle(c models.Category) string {
	return g.title.String(string(c))
}

// Summary renders s in format.
func (g *Generator) Summary(s Summary, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.marshalJSON(s)
	case FormatYAML:
		return g.marshalYAML(s)
	case FormatText, "":
		return g.summaryText(s), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) summaryText(s Summary) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Month: %s  Year: %s\n", s.Month, s.Year)
	fmt.Fprintf(&buf, "Expenses: %d\n", s.Count)
	fmt.Fprintf(&buf, "Total: %s\n\n", g.amountString(s.Total))

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Category\tTotal")
	for _, line := range s.Categories {
		fmt.Fprintf(w, "%s\t%s\n", g.CategoryTitle(models.Category(line.Category)), g.amountString(line.Total))
	}
	_ = w.Flush()

	if len(s.Months) > 0 {
		buf.WriteString("\n")
		w = tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Month\tTotal")
		for _, line := range s.Months {
			fmt.Fprintf(w, "%s\t%s\n", line.Month, g.amountString(line.Total))
		}
		_ = w.Flush()
	}
	return buf.Bytes()
}

func (g *Generator) amountString(s string) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return g.Amount(d)
}

// ExpenseLine is the machine-readable form of a listed expense.
type ExpenseLine struct {
	ID          int64  `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description" yaml:"description"`
	Amount      string `json:"amount" yaml:"amount"`
	Category    string `json:"category" yaml:"category"`
	Subcategory string `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
}

// List renders expenses in format. The text form is a table.
func (g *Generator) List(w io.Writer, expenses []models.Expense, format string) error {
	lines := make([]ExpenseLine, len(expenses))
	for i, e := range expenses {
		lines[i] = ExpenseLine{
			ID:          e.ID,
			Date:        e.Date.String(),
			Description: e.Description,
			Amount:      models.FormatAmount(e.Amount),
			Category:    string(e.Category),
			Subcategory: e.Subcategory,
		}
	}

	var out []byte
	var err error
	switch format {
	case FormatJSON:
		out, err = g.marshalJSON(lines)
	case FormatYAML:
		out, err = g.marshalYAML(lines)
	case FormatText, "":
		if len(expenses) == 0 {
			_, err = fmt.Fprintln(w, "No expenses found.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDate\tDescription\tAmount\tCategory")
		for i, e := range expenses {
			category := g.CategoryTitle(e.Category)
			if e.Subcategory != "" {
				category += " / " + e.Subcategory
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, lines[i].Date, oneLine(e.Description), g.Amount(e.Amount), category)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Forecast renders predictions in format.
func (g *Generator) Forecast(w io.Writer, months []models.MonthlyTotal, predictions []forecast.Prediction, format string) error {
	type predictionLine struct {
		Method   string `json:"method" yaml:"method"`
		Value    string `json:"value" yaml:"value"`
		Fallback bool   `json:"fallback" yaml:"fallback"`
	}
	lines := make([]predictionLine, len(predictions))
	for i, p := range predictions {
		lines[i] = predictionLine{Method: p.Method, Value: models.FormatAmount(p.Value), Fallback: p.Fallback}
	}

	switch format {
	case FormatJSON:
		out, err := g.marshalJSON(lines)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case FormatYAML:
		out, err := g.marshalYAML(lines)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case FormatText, "":
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range months {
		fmt.Fprintf(tw, "%s\t%s\n", m.Label, g.Amount(m.Total))
	}
	for _, p := range predictions {
		label := "Next month (" + p.Method + ")"
		if p.Fallback {
			label += " [average]"
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, g.Amount(p.Value))
	}
	return tw.Flush()
}

// Candidate renders an extracted expense for review before it is saved.
func (g *Generator) Candidate(w io.Writer, c models.Candidate, format string) error {
	line := ExpenseLine{
		Date:        c.Date,
		Description: c.Description,
		Amount:      models.FormatAmount(c.Amount),
		Category:    c.Category,
		Subcategory: c.Subcategory,
	}

	var out []byte
	var err error
	switch format {
	case FormatJSON:
		out, err = g.marshalJSON(line)
	case FormatYAML:
		out, err = g.marshalYAML(line)
	case FormatText, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Description:\t%s\n", oneLine(c.Description))
		fmt.Fprintf(tw, "Amount:\t%s\n", g.Amount(c.Amount))
		fmt.Fprintf(tw, "Date:\t%s\n", c.Date)
		if c.Category != "" {
			category := g.CategoryTitle(models.ParseCategory(c.Category))
			if c.Subcategory != "" {
				category += " / " + c.Subcategory
			}
			fmt.Fprintf(tw, "Category:\t%s\n", category)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (g *Generator) marshalJSON(v interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

func (g *Generator) marshalYAML(v interface{}) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return out, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
