// Package anomaly scores dataset rows with an unsupervised outlier model
// and flags the most anomalous fraction.
package anomaly

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dashlens/dashlens/pkg/anomaly/iforest"
	"github.com/dashlens/dashlens/pkg/dataset"
)

var (
	// ErrInsufficientData is returned when too few rows remain to fit.
	ErrInsufficientData = errors.New("anomaly: insufficient data")
	// ErrInvalidContamination is returned for a contamination outside (0, 0.5].
	ErrInvalidContamination = errors.New("anomaly: contamination must be in (0, 0.5]")
)

// MinRows is the smallest dataset an outlier model can be fitted on.
const MinRows = 2

// DefaultContamination is the expected fraction of anomalous rows.
const DefaultContamination = 0.05

// Result holds per-row anomaly output. Scores and Flags are aligned with
// the input dataset's rows.
type Result struct {
	Scores        []float64 `json:"scores"`
	Flags         []bool    `json:"flags"`
	Threshold     float64   `json:"threshold"`
	Columns       []string  `json:"columns"`
	Contamination float64   `json:"contamination"`
}

// Flagged returns the number of rows flagged anomalous.
func (r *Result) Flagged() int {
	n := 0
	for _, f := range r.Flags {
		if f {
			n++
		}
	}
	return n
}

// Detector scores feature rows; higher scores mean more anomalous. It is
// the seam for swapping outlier model families.
type Detector interface {
	Fit(data [][]float64) error
	Scores(data [][]float64) ([]float64, error)
}

type config struct {
	contamination float64
	trees         int
	sampleSize    int
	seed          int64
	detector      Detector
}

// Option configures Detect.
type Option func(*config)

// WithContamination sets the expected anomalous fraction, in (0, 0.5].
func WithContamination(c float64) Option {
	return func(cfg *config) { cfg.contamination = c }
}

// WithTrees sets the isolation forest ensemble size.
func WithTrees(n int) Option {
	return func(cfg *config) { cfg.trees = n }
}

// WithSampleSize sets the isolation forest subsample size.
func WithSampleSize(n int) Option {
	return func(cfg *config) { cfg.sampleSize = n }
}

// WithSeed seeds the model's randomness for reproducible scoring.
func WithSeed(seed int64) Option {
	return func(cfg *config) { cfg.seed = seed }
}

// WithDetector swaps in an alternative outlier model. The isolation
// forest options are ignored when set.
func WithDetector(d Detector) Option {
	return func(cfg *config) { cfg.detector = d }
}

// Detect builds a feature matrix from the named numeric columns (median
// imputation, per-column standardization), fits an isolation-based
// outlier model, and flags the top contamination fraction of rows by
// score. Ties are broken stably by original row order. Detect is a pure
// function of its inputs: identical dataset, columns and options yield
// identical results.
func Detect(ds *dataset.Dataset, columns []string, opts ...Option) (*Result, error) {
	cfg := config{
		contamination: DefaultContamination,
		trees:         iforest.DefaultTrees,
		sampleSize:    iforest.DefaultSampleSize,
		seed:          iforest.DefaultSeed,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.contamination <= 0 || cfg.contamination > 0.5 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidContamination, cfg.contamination)
	}

	fm, err := dataset.BuildMatrix(ds, columns)
	if err != nil {
		return nil, err
	}
	n := len(fm.Rows)
	if n < MinRows {
		return nil, fmt.Errorf("%w: %d rows, need at least %d", ErrInsufficientData, n, MinRows)
	}

	det := cfg.detector
	if det == nil {
		det = iforest.New(
			iforest.WithTrees(cfg.trees),
			iforest.WithSampleSize(cfg.sampleSize),
			iforest.WithSeed(cfg.seed),
		)
	}
	if err := det.Fit(fm.Rows); err != nil {
		return nil, err
	}
	scores, err := det.Scores(fm.Rows)
	if err != nil {
		return nil, err
	}

	flags, threshold := flagTop(scores, cfg.contamination)
	return &Result{
		Scores:        scores,
		Flags:         flags,
		Threshold:     threshold,
		Columns:       fm.Columns,
		Contamination: cfg.contamination,
	}, nil
}

// flagTop flags the round(contamination*n) highest-scoring rows. Stable
// sort keeps equal scores in original row order.
func flagTop(scores []float64, contamination float64) ([]bool, float64) {
	n := len(scores)
	k := int(math.Round(contamination * float64(n)))
	if k > n {
		k = n
	}

	flags := make([]bool, n)
	if k == 0 {
		// Scores are normalized to [0, 1]; a threshold of 1 is finite
		// and above anything a row can score.
		return flags, 1
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	threshold := scores[order[k-1]]
	for _, idx := range order[:k] {
		flags[idx] = true
	}
	return flags, threshold
}
