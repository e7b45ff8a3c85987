package forecast

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// LinearTrend fits an ordinary least squares line over the series index.
// Prediction bands use the regression prediction standard error
// s*sqrt(1 + 1/n + (x-xbar)^2/Sxx), which widens monotonically as the
// forecast step moves away from the observed window.
type LinearTrend struct {
	n         int
	intercept float64
	slope     float64
	meanX     float64
	sxx       float64
	sigma     float64 // residual standard error
	fitted    bool
}

// NewLinearTrend creates an unfitted linear trend model.
func NewLinearTrend() *LinearTrend {
	return &LinearTrend{}
}

// Name implements Model.
func (m *LinearTrend) Name() string { return "linear" }

// Fit implements Model.
func (m *LinearTrend) Fit(series []float64) error {
	n := len(series)
	if n < MinObservations {
		return ErrInsufficientData
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, series, nil, false)

	meanX := stat.Mean(xs, nil)
	sxx := 0.0
	sse := 0.0
	for i, x := range xs {
		dx := x - meanX
		sxx += dx * dx
		resid := series[i] - (intercept + slope*x)
		sse += resid * resid
	}

	m.n = n
	m.intercept = intercept
	m.slope = slope
	m.meanX = meanX
	m.sxx = sxx
	m.sigma = math.Sqrt(sse / float64(n-2))
	m.fitted = true
	return nil
}

// Predict implements Model.
func (m *LinearTrend) Predict(horizon int, level float64) ([]Point, error) {
	if !m.fitted {
		return nil, errors.New("forecast: linear model not fitted")
	}

	z := criticalValue(level)
	points := make([]Point, horizon)
	for h := 1; h <= horizon; h++ {
		x := float64(m.n - 1 + h)
		point := m.intercept + m.slope*x
		dx := x - m.meanX
		se := m.sigma * math.Sqrt(1+1/float64(m.n)+dx*dx/m.sxx)
		points[h-1] = Point{
			Step:  h,
			Point: point,
			Lower: point - z*se,
			Upper: point + z*se,
		}
	}
	return points, nil
}
