// Package forecast fits trend models on a numeric series and projects
// future values with symmetric confidence bands.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInsufficientData is returned when the series is too short to fit.
	ErrInsufficientData = errors.New("forecast: insufficient data")
	// ErrInvalidHorizon is returned when horizon is not positive.
	ErrInvalidHorizon = errors.New("forecast: horizon must be positive")
	// ErrInvalidConfidence is returned when the confidence level is
	// outside (0, 1).
	ErrInvalidConfidence = errors.New("forecast: confidence level must be in (0, 1)")
)

// MinObservations is the shortest series a model can be fitted on.
const MinObservations = 5

// DefaultConfidence is the default confidence level for bands.
const DefaultConfidence = 0.95

// Point is one projected future step. Lower <= Point <= Upper always
// holds, and every field is finite.
type Point struct {
	Step  int     `json:"step"`
	Point float64 `json:"point"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Result is an ordered forecast with its fitting metadata.
type Result struct {
	Points     []Point `json:"points"`
	Model      string  `json:"model"`
	Horizon    int     `json:"horizon"`
	Confidence float64 `json:"confidence"`
}

// Model is the capability interface a trend model implements. Predict
// returns exactly horizon points with bands at the given confidence
// level. Implementations must be deterministic.
type Model interface {
	Name() string
	Fit(series []float64) error
	Predict(horizon int, level float64) ([]Point, error)
}

type config struct {
	level float64
	model Model
}

// Option configures Forecast.
type Option func(*config)

// WithConfidence sets the confidence level for the bands, in (0, 1).
func WithConfidence(level float64) Option {
	return func(cfg *config) { cfg.level = level }
}

// WithModel selects the trend model. Defaults to the linear trend.
func WithModel(m Model) Option {
	return func(cfg *config) { cfg.model = m }
}

// Forecast fits a trend model to series and projects horizon future
// steps. All validation happens before any fitting, so an error never
// leaves a partial result behind.
func Forecast(series []float64, horizon int, opts ...Option) (*Result, error) {
	cfg := config{level: DefaultConfidence}
	for _, opt := range opts {
		opt(&cfg)
	}

	if horizon <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizon)
	}
	if cfg.level <= 0 || cfg.level >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidConfidence, cfg.level)
	}
	if len(series) < MinObservations {
		return nil, fmt.Errorf("%w: %d observations, need at least %d",
			ErrInsufficientData, len(series), MinObservations)
	}
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value at index %d", ErrInsufficientData, i)
		}
	}

	m := cfg.model
	if m == nil {
		m = NewLinearTrend()
	}
	if err := m.Fit(series); err != nil {
		return nil, err
	}
	points, err := m.Predict(horizon, cfg.level)
	if err != nil {
		return nil, err
	}

	return &Result{
		Points:     points,
		Model:      m.Name(),
		Horizon:    horizon,
		Confidence: cfg.level,
	}, nil
}

// criticalValue returns the two-sided normal critical value for the
// given confidence level.
func criticalValue(level float64) float64 {
	return distuv.UnitNormal.Quantile(0.5 + level/2)
}
