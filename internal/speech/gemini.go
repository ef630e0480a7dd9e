package speech

import (
	"context"
	"errors"
	"strings"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// TranscribePrompt asks for a verbatim transcript only.
const TranscribePrompt = "Transcribe this audio recording verbatim. Return only the spoken words."

// GeminiTranscriber streams a transcript from the Gemini multimodal model.
// Each streamed chunk extends the interim hypothesis; the end of the stream
// produces the final fragment.
type GeminiTranscriber struct {
	client *genai.Client
	opts   aiclient.GeminiOptions
	logger logging.Logger
}

func NewGeminiTranscriber(client *genai.Client, opts aiclient.GeminiOptions, logger logging.Logger) *GeminiTranscriber {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &GeminiTranscriber{
		client: client,
		opts:   opts,
		logger: logger.WithFields(logging.F(logging.FieldComponent, "speech")),
	}
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, audio Audio) (<-chan Fragment, error) {
	model := g.client.GenerativeModel(g.opts.Model)
	model.SetTemperature(0)
	return g.stream(ctx, model, audio), nil
}

func (g *GeminiTranscriber) stream(ctx context.Context, model *genai.GenerativeModel, audio Audio) <-chan Fragment {
	out := make(chan Fragment)
	go func() {
		defer close(out)
		if g.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
			defer cancel()
		}

		iter := model.GenerateContentStream(ctx,
			genai.Text(TranscribePrompt),
			genai.Blob{MIMEType: audio.MIMEType, Data: audio.Data})

		var b strings.Builder
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				if ctx.Err() == nil {
					g.logger.WithError(err).Warn("Transcription stream failed")
					send(ctx, out, Fragment{Error: err.Error()})
				}
				return
			}
			b.WriteString(aiclient.ResponseText(resp))
			if !send(ctx, out, Fragment{Text: b.String()}) {
				return
			}
		}
		send(ctx, out, Fragment{Text: b.String(), Final: true})
	}()
	return out
}

func send(ctx context.Context, out chan<- Fragment, f Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
