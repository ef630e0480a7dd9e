// Package ocr turns a receipt (photo or PDF) into plain text.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedType is returned for documents that are neither an image
	// nor a PDF.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrNoText is returned when recognition produced nothing.
	ErrNoText = errors.New("no text recognized")
)

const MIMETypePDF = "application/pdf"

// Document is a receipt to recognize.
type Document struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// IsPDF reports whether the document is a PDF.
func (d Document) IsPDF() bool {
	return d.MIMEType == MIMETypePDF
}

// IsImage reports whether the document is an image.
func (d Document) IsImage() bool {
	return strings.HasPrefix(d.MIMEType, "image/")
}

// TextRecognizer extracts the text of a document.
type TextRecognizer interface {
	Recognize(ctx context.Context, doc Document) (string, error)
}

// LoadDocument reads path and sniffs its MIME type.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("error reading receipt %s: %w", path, err)
	}
	name := filepath.Base(path)
	return Document{Name: name, MIMEType: DetectMIMEType(name, data), Data: data}, nil
}

// DetectMIMEType sniffs data, falling back to the file extension.
func DetectMIMEType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = sniffed[:i]
	}
	if sniffed == MIMETypePDF || strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MIMETypePDF
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	}
	return sniffed
}

// Router sends PDFs to one recognizer and images to another.
type Router struct {
	PDF   TextRecognizer
	Image TextRecognizer
}

func (r *Router) Recognize(ctx context.Context, doc Document) (string, error) {
	var target TextRecognizer
	switch {
	case doc.IsPDF():
		target = r.PDF
	case doc.IsImage():
		target = r.Image
	}
	if target == nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, doc.MIMEType)
	}

	text, err := target.Recognize(ctx, doc)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
