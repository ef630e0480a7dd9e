package ocr

import (
	"context"
	"sync"
)

// MockRecognizer returns fixed text and records the documents it saw.
type MockRecognizer struct {
	mu   sync.Mutex
	Text string
	Err  error
	docs []Document
}

func NewMockRecognizer(text string, err error) *MockRecognizer {
	return &MockRecognizer{Text: text, Err: err}
}

func (m *MockRecognizer) Recognize(_ context.Context, doc Document) (string, error) {
	m.mu.Lock()
	m.docs = append(m.docs, doc)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// Documents returns every document received.
func (m *MockRecognizer) Documents() []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Document(nil), m.docs...)
}
