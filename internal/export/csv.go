// Package export writes expenses to CSV and reads them back.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/gocarina/gocsv"
)

// Row is one CSV line. Column order is the export layout.
type Row struct {
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
	Subcategory string `csv:"Subcategory"`
	Date        string `csv:"Date"`
}

// Header is the first line of every export.
var Header = []string{"Description", "Amount", "Category", "Subcategory", "Date"}

// CSV reads and writes the export layout with a configurable delimiter.
type CSV struct {
	Delimiter rune
	logger    logging.Logger
}

func NewCSV(delimiter rune, logger logging.Logger) *CSV {
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CSV{Delimiter: delimiter, logger: logger}
}

// Filename is expenses.csv with the active month (0-based) and year
// selectors appended.
func Filename(filter models.Filter) string {
	var b strings.Builder
	b.WriteString("expenses")
	if filter.Month != nil {
		fmt.Fprintf(&b, "_month-%d", *filter.Month)
	}
	if filter.Year != nil {
		fmt.Fprintf(&b, "_year-%d", *filter.Year)
	}
	b.WriteString(".csv")
	return b.String()
}

// ToRows converts expenses to rows in order.
func ToRows(expenses []models.Expense) []Row {
	rows := make([]Row, len(expenses))
	for i, e := range expenses {
		rows[i] = Row{
			Description: e.Description,
			Amount:      e.Amount.String(),
			Category:    string(e.Category),
			Subcategory: e.Subcategory,
			Date:        e.Date.String(),
		}
	}
	return rows
}

// Write encodes expenses to w. Fields containing the delimiter, quotes or
// newlines are quoted with internal quotes doubled.
func (c *CSV) Write(w io.Writer, expenses []models.Expense) error {
	if len(expenses) == 0 {
		return trackererror.ErrNoExpenses
	}
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = c.Delimiter

	if err := gocsv.MarshalCSV(ToRows(expenses), gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ExportFile writes the filtered view to dir under Filename(filter) and
// returns the path.
func (c *CSV) ExportFile(dir string, filter models.Filter, expenses []models.Expense) (string, error) {
	if len(expenses) == 0 {
		return "", trackererror.ErrNoExpenses
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("error creating directory: %w", err)
	}

	path := filepath.Join(dir, Filename(filter))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := c.Write(file, expenses); err != nil {
		return "", err
	}

	c.logger.Info("Exported expenses to CSV",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(expenses)))
	return path, nil
}

// Read decodes rows in the export layout into add-ready input. Nothing is
// validated here; NewExpense does that on add.
func (c *CSV) Read(r io.Reader) ([]models.ExpenseInput, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = c.Delimiter
	csvReader.TrimLeadingSpace = true

	var rows []Row
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	inputs := make([]models.ExpenseInput, len(rows))
	for i, row := range rows {
		inputs[i] = models.ExpenseInput{
			Description: row.Description,
			Amount:      row.Amount,
			Date:        row.Date,
			Category:    row.Category,
			Subcategory: row.Subcategory,
		}
	}
	return inputs, nil
}

// ReadFile opens path and calls Read.
func (c *CSV) ReadFile(path string) ([]models.ExpenseInput, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	inputs, err := c.Read(file)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Read expenses from CSV",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(inputs)))
	return inputs, nil
}
