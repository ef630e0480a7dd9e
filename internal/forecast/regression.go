package forecast

import (
	"errors"
	"fmt"
	"math"

	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// ErrNotConverged is returned when gradient descent exhausts its epochs
// without the parameter updates falling under the tolerance.
var ErrNotConverged = errors.New("regression did not converge")

// Line is a fitted y = Intercept + Slope*x.
type Line struct {
	Intercept float64
	Slope     float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Fitter fits a line through (xs[i], ys[i]).
type Fitter interface {
	Fit(xs, ys []float64) (Line, error)
}

// FitterFunc adapts a function to the Fitter interface.
type FitterFunc func(xs, ys []float64) (Line, error)

func (f FitterFunc) Fit(xs, ys []float64) (Line, error) {
	return f(xs, ys)
}

// GradientDescent minimises mean squared error by batch gradient descent.
// x is standardized before training so a single learning rate works for any
// series length; the result is mapped back to the original scale.
type GradientDescent struct {
	Epochs       int
	LearningRate float64
	Tolerance    float64
}

// DefaultGradientDescent matches the configuration defaults.
func DefaultGradientDescent() GradientDescent {
	return GradientDescent{Epochs: 1000, LearningRate: 0.1, Tolerance: 1e-9}
}

func (g GradientDescent) Fit(xs, ys []float64) (Line, error) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return Line{}, fmt.Errorf("need at least two paired points, got %d/%d", len(xs), len(ys))
	}

	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(n)
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	std := math.Sqrt(variance / float64(n))
	if std == 0 {
		return Line{}, fmt.Errorf("x has no variance")
	}

	z := make([]float64, n)
	for i, x := range xs {
		z[i] = (x - mean) / std
	}

	// Tolerance is relative to the scale of y.
	var scale float64
	for _, y := range ys {
		scale = math.Max(scale, math.Abs(y))
	}
	tol := g.Tolerance * math.Max(scale, 1)

	var a, b float64
	converged := false
	for epoch := 0; epoch < g.Epochs; epoch++ {
		var gradA, gradB float64
		for i := range z {
			residual := a + b*z[i] - ys[i]
			gradA += residual
			gradB += residual * z[i]
		}
		stepA := g.LearningRate * 2 * gradA / float64(n)
		stepB := g.LearningRate * 2 * gradB / float64(n)
		a -= stepA
		b -= stepB

		if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			return Line{}, fmt.Errorf("diverged at epoch %d", epoch)
		}
		if math.Abs(stepA) < tol && math.Abs(stepB) < tol {
			converged = true
			break
		}
	}
	if !converged {
		return Line{}, ErrNotConverged
	}

	slope := b / std
	return Line{Intercept: a - slope*mean, Slope: slope}, nil
}

// Regression predicts the next month by extrapolating a fitted line over
// the month index.
type Regression struct {
	fitter Fitter
	logger logging.Logger
}

// NewRegression creates the regression method. A nil fitter means
// DefaultGradientDescent.
func NewRegression(fitter Fitter, logger logging.Logger) *Regression {
	if fitter == nil {
		fitter = DefaultGradientDescent()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Regression{fitter: fitter, logger: logger}
}

// Predict returns the value of the fitted line at index len(totals). Fewer
// than two points predict zero. A failed or non-finite fit falls back to
// FallbackAverage.
func (r *Regression) Predict(totals []decimal.Decimal) (decimal.Decimal, bool) {
	if len(totals) < 2 {
		return decimal.Zero, false
	}

	xs := make([]float64, len(totals))
	ys := make([]float64, len(totals))
	for i, t := range totals {
		xs[i] = float64(i)
		ys[i] = t.InexactFloat64()
	}

	line, err := r.fitter.Fit(xs, ys)
	if err == nil {
		v := line.At(float64(len(totals)))
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return decimal.NewFromFloat(v).Round(2), false
		}
		err = fmt.Errorf("non-finite prediction")
	}

	r.logger.WithError(err).Warn("Regression failed, using average fallback",
		logging.F(logging.FieldMethod, MethodRegression),
		logging.F(logging.FieldCount, len(totals)))
	return FallbackAverage(totals), true
}

// FallbackAverage is the average of the last three totals when at least
// three exist, else the average of all of them.
func FallbackAverage(totals []decimal.Decimal) decimal.Decimal {
	if len(totals) >= 3 {
		return models.Average(totals[len(totals)-3:])
	}
	return models.Average(totals)
}
