package forecast

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Damped-trend smoothing defaults. Alpha and Beta follow the usual
// level/trend split; Phi slightly below 1 keeps long projections from
// running away.
const (
	DefaultAlpha = 0.5
	DefaultBeta  = 0.3
	DefaultPhi   = 0.98
)

// DampedTrend is a Holt-style exponential smoothing model with a damped
// linear trend. Uncertainty grows with sqrt(h) of the in-sample residual
// standard deviation, so bands widen with the step index.
type DampedTrend struct {
	Alpha float64
	Beta  float64
	Phi   float64

	level  float64
	trend  float64
	sigma  float64
	fitted bool
}

// NewDampedTrend creates a damped-trend model with default smoothing
// factors.
func NewDampedTrend() *DampedTrend {
	return &DampedTrend{Alpha: DefaultAlpha, Beta: DefaultBeta, Phi: DefaultPhi}
}

// Name implements Model.
func (m *DampedTrend) Name() string { return "damped_trend" }

// Fit implements Model.
func (m *DampedTrend) Fit(series []float64) error {
	if len(series) < MinObservations {
		return ErrInsufficientData
	}
	if m.Alpha <= 0 || m.Alpha >= 1 || m.Beta <= 0 || m.Beta >= 1 || m.Phi <= 0 || m.Phi > 1 {
		return errors.New("forecast: smoothing factors out of range")
	}

	level := series[0]
	trend := series[1] - series[0]
	residuals := make([]float64, 0, len(series)-1)

	for _, y := range series[1:] {
		pred := level + m.Phi*trend
		residuals = append(residuals, y-pred)

		newLevel := m.Alpha*y + (1-m.Alpha)*pred
		trend = m.Beta*(newLevel-level) + (1-m.Beta)*m.Phi*trend
		level = newLevel
	}

	m.level = level
	m.trend = trend
	m.sigma = stat.StdDev(residuals, nil)
	if math.IsNaN(m.sigma) {
		m.sigma = 0
	}
	m.fitted = true
	return nil
}

// Predict implements Model.
func (m *DampedTrend) Predict(horizon int, conf float64) ([]Point, error) {
	if !m.fitted {
		return nil, errors.New("forecast: damped model not fitted")
	}

	z := criticalValue(conf)
	points := make([]Point, horizon)
	damp := 0.0
	phiPow := 1.0
	for h := 1; h <= horizon; h++ {
		phiPow *= m.Phi
		damp += phiPow

		point := m.level + damp*m.trend
		se := m.sigma * math.Sqrt(float64(h))
		points[h-1] = Point{
			Step:  h,
			Point: point,
			Lower: point - z*se,
			Upper: point + z*se,
		}
	}
	return points, nil
}
