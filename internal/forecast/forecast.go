// Package forecast predicts next month's total spend from the monthly
// totals of past months.
package forecast

import (
	"context"
	"fmt"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Forecast methods.
const (
	MethodRegression = "regression"
	MethodRemote     = "remote"
	MethodBoth       = "both"
)

// Prediction is the outcome of one method.
type Prediction struct {
	Method string          `json:"method" yaml:"method"`
	Value  decimal.Decimal `json:"value" yaml:"value"`
	// Fallback is true when the method failed and an average was used.
	Fallback bool `json:"fallback" yaml:"fallback"`
}

// Forecaster dispatches to the regression and remote methods.
type Forecaster struct {
	regression *Regression
	remote     *Remote
	logger     logging.Logger
}

// NewForecaster wires both methods.
func NewForecaster(fitter Fitter, completer aiclient.Completer, temperature float32, logger logging.Logger) *Forecaster {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Forecaster{
		regression: NewRegression(fitter, logger),
		remote:     NewRemote(completer, temperature, logger),
		logger:     logger,
	}
}

// Forecast runs method over months. "both" runs the two methods
// concurrently and returns regression first.
func (f *Forecaster) Forecast(ctx context.Context, months []models.MonthlyTotal, method string) ([]Prediction, error) {
	switch method {
	case MethodRegression:
		value, fallback := f.regression.Predict(models.Totals(months))
		return []Prediction{{Method: MethodRegression, Value: value, Fallback: fallback}}, nil

	case MethodRemote:
		value, fallback, err := f.remote.Predict(ctx, months)
		if err != nil {
			return nil, err
		}
		return []Prediction{{Method: MethodRemote, Value: value, Fallback: fallback}}, nil

	case MethodBoth:
		out := make([]Prediction, 2)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			value, fallback := f.regression.Predict(models.Totals(months))
			out[0] = Prediction{Method: MethodRegression, Value: value, Fallback: fallback}
			return nil
		})
		g.Go(func() error {
			value, fallback, err := f.remote.Predict(gctx, months)
			if err != nil {
				return err
			}
			out[1] = Prediction{Method: MethodRemote, Value: value, Fallback: fallback}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown forecast method %q", method)
}
