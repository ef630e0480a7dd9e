package session

import (
	"context"
	"sync"

	"fjacquet/expense-tracker/internal/trackererror"
)

// Pipeline names guarded by the session.
const (
	PipelineCategorize = "categorize"
	PipelineVoice      = "voice"
	PipelineReceipt    = "receipt"
	PipelineForecast   = "forecast"
	PipelineQuery      = "query"
)

// Gate holds one busy flag per pipeline.
type Gate struct {
	mu   sync.Mutex
	busy map[string]bool
}

func NewGate() *Gate {
	return &Gate{busy: make(map[string]bool)}
}

// Acquire marks pipeline busy and returns the release function, or ErrBusy
// when a request on pipeline is already in flight.
func (g *Gate) Acquire(pipeline string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[pipeline] {
		return nil, trackererror.ErrBusy
	}
	g.busy[pipeline] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, pipeline)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether pipeline has a request in flight.
func (g *Gate) Busy(pipeline string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy[pipeline]
}

// Latest stamps requests with increasing generation tokens. Starting a
// request cancels the context of the previous one, and only the newest
// token is current.
type Latest struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin supersedes any running request and returns the new token with a
// context that is cancelled by the next Begin.
func (l *Latest) Begin(ctx context.Context) (uint64, context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	ctx, l.cancel = context.WithCancel(ctx)
	return l.gen, ctx
}

// IsLatest reports whether token is still the newest one.
func (l *Latest) IsLatest(token uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return token == l.gen
}

// End releases the context of token if it is still the newest.
func (l *Latest) End(token uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if token == l.gen && l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
