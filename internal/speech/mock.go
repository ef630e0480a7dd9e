package speech

import "context"

// MockTranscriber replays Fragments in order.
type MockTranscriber struct {
	Fragments []Fragment
	Err       error
}

func (m *MockTranscriber) Transcribe(ctx context.Context, _ Audio) (<-chan Fragment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(chan Fragment)
	go func() {
		defer close(out)
		for _, f := range m.Fragments {
			if !send(ctx, out, f) {
				return
			}
		}
	}()
	return out, nil
}
