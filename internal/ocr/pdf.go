package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-tracker/internal/logging"

	"github.com/ledongthuc/pdf"
)

// PDFRecognizer reads the text layer of a PDF locally. Scanned PDFs without
// a text layer yield ErrNoText.
type PDFRecognizer struct {
	logger logging.Logger
}

func NewPDFRecognizer(logger logging.Logger) *PDFRecognizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &PDFRecognizer{logger: logger}
}

func (p *PDFRecognizer) Recognize(ctx context.Context, doc Document) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", doc.Name, err)
	}

	var b strings.Builder
	totalPages := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", pageIndex, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	p.logger.Debug("Extracted PDF text",
		logging.F(logging.FieldFile, doc.Name),
		logging.F("pages", totalPages),
		logging.F("chars", len(text)))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
