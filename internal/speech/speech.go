// Package speech turns recorded audio into a transcript. Transcribers emit
// interim fragments while they work and a final fragment when done.
package speech

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoSpeech is returned when the stream ended without any text.
var ErrNoSpeech = errors.New("no speech recognized")

// Fragment is one piece of a transcript. Interim fragments carry the best
// hypothesis so far; a final fragment carries the settled text.
type Fragment struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
	Error string `json:"error,omitempty"`
}

// Audio is a recorded utterance.
type Audio struct {
	MIMEType string
	Data     []byte
}

// Transcriber streams fragments for audio. The channel is closed when the
// transcription ends or ctx is cancelled.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (<-chan Fragment, error)
}

var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".m4a":  "audio/aac",
	".aiff": "audio/aiff",
}

// LoadAudio reads an audio file and derives its MIME type from the
// extension.
func LoadAudio(path string) (Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Audio{}, fmt.Errorf("error reading audio %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := audioTypes[ext]
	if !ok {
		mimeType = mime.TypeByExtension(ext)
	}
	if !strings.HasPrefix(mimeType, "audio/") {
		return Audio{}, fmt.Errorf("unsupported audio file %s", filepath.Base(path))
	}
	return Audio{MIMEType: mimeType, Data: data}, nil
}

// Collect reads fragments until the first final one and returns its text.
// onInterim, when set, sees every interim fragment. If the stream closes
// without a final fragment the last interim text is used.
func Collect(ctx context.Context, fragments <-chan Fragment, onInterim func(Fragment)) (string, error) {
	var last string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case f, ok := <-fragments:
			if !ok {
				if strings.TrimSpace(last) == "" {
					return "", ErrNoSpeech
				}
				return strings.TrimSpace(last), nil
			}
			if f.Error != "" {
				return "", fmt.Errorf("transcription failed: %s", f.Error)
			}
			if f.Final {
				text := strings.TrimSpace(f.Text)
				if text == "" {
					text = strings.TrimSpace(last)
				}
				if text == "" {
					return "", ErrNoSpeech
				}
				return text, nil
			}
			last = f.Text
			if onInterim != nil {
				onInterim(f)
			}
		}
	}
}

// Listen transcribes audio and stops the stream as soon as a final
// fragment arrives.
func Listen(ctx context.Context, t Transcriber, audio Audio, onInterim func(Fragment)) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fragments, err := t.Transcribe(ctx, audio)
	if err != nil {
		return "", err
	}
	return Collect(ctx, fragments, onInterim)
}
