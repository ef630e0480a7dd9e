package ocr

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"

	"github.com/google/generative-ai-go/genai"
)

// ImagePrompt asks the multimodal model for a plain transcription.
const ImagePrompt = "Transcribe all text printed on this receipt, line by line. " +
	"Keep amounts, dates and the vendor name exactly as printed. Return only the text."

// GeminiRecognizer sends images to the Gemini multimodal model.
type GeminiRecognizer struct {
	client *genai.Client
	opts   aiclient.GeminiOptions
	logger logging.Logger
}

// NewGeminiRecognizer shares client with the completer.
func NewGeminiRecognizer(client *genai.Client, opts aiclient.GeminiOptions, logger logging.Logger) *GeminiRecognizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &GeminiRecognizer{
		client: client,
		opts:   opts,
		logger: logger.WithFields(logging.F(logging.FieldComponent, "ocr")),
	}
}

func (g *GeminiRecognizer) Recognize(ctx context.Context, doc Document) (string, error) {
	if !doc.IsImage() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, doc.MIMEType)
	}

	model := g.client.GenerativeModel(g.opts.Model)
	model.SetTemperature(0)
	format := strings.TrimPrefix(doc.MIMEType, "image/")

	var text string
	err := aiclient.Do(ctx, g.opts, g.logger, func(ctx context.Context) error {
		resp, err := model.GenerateContent(ctx, genai.Text(ImagePrompt), genai.ImageData(format, doc.Data))
		if err != nil {
			return err
		}
		text = aiclient.ResponseText(resp)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("image recognition failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
