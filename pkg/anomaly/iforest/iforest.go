// Package iforest implements the Isolation Forest algorithm used by the
// anomaly scorer. Trees split feature space on a random feature and a
// random threshold; rows that isolate in fewer splits score higher.
package iforest

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"math/rand"
	"sync"
)

const (
	// DefaultTrees is the default ensemble size.
	DefaultTrees = 100
	// DefaultSampleSize is the default per-tree subsample size, capped at
	// the dataset size during Fit.
	DefaultSampleSize = 256
	// DefaultSeed keeps repeated fits reproducible unless overridden.
	DefaultSeed = 42
)

// ErrNotFitted is returned when scoring is attempted before Fit.
var ErrNotFitted = errors.New("iforest: model not fitted")

// Forest is a seeded isolation forest. A fitted forest is safe for
// concurrent scoring.
type Forest struct {
	mu sync.RWMutex

	nTrees     int
	sampleSize int
	seed       int64
	rng        *rand.Rand

	trees    []*tree
	maxDepth int
	norm     float64 // c(sampleSize), the normalizing path length
	fitted   bool
}

type tree struct {
	Root *node
}

// node is an isolation-tree node. Fields are exported for gob encoding.
type node struct {
	Feature   int
	Threshold float64
	Left      *node
	Right     *node
	Size      int // samples that reached this leaf
}

// Option configures a Forest.
type Option func(*Forest)

// WithTrees sets the ensemble size.
func WithTrees(n int) Option {
	return func(f *Forest) { f.nTrees = n }
}

// WithSampleSize sets the per-tree subsample size.
func WithSampleSize(n int) Option {
	return func(f *Forest) { f.sampleSize = n }
}

// WithSeed sets the random seed. Fits never draw from ambient global
// randomness, so a fixed seed makes scores reproducible.
func WithSeed(seed int64) Option {
	return func(f *Forest) { f.seed = seed }
}

// New creates a Forest with the given options.
func New(opts ...Option) *Forest {
	f := &Forest{
		nTrees:     DefaultTrees,
		sampleSize: DefaultSampleSize,
		seed:       DefaultSeed,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.rng = rand.New(rand.NewSource(f.seed))
	return f
}

// Fit builds the ensemble on data, where each row is a sample and each
// column a feature. Rows must already be numeric and complete.
func (f *Forest) Fit(data [][]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(data) == 0 {
		return errors.New("iforest: empty training data")
	}
	nSamples := len(data)
	nFeatures := len(data[0])

	sampleSize := f.sampleSize
	if sampleSize > nSamples {
		sampleSize = nSamples
	}
	f.maxDepth = int(math.Ceil(math.Log2(float64(sampleSize))))
	if f.maxDepth < 1 {
		f.maxDepth = 1
	}

	f.trees = make([]*tree, f.nTrees)
	for i := range f.trees {
		indices := f.rng.Perm(nSamples)[:sampleSize]
		sample := make([][]float64, sampleSize)
		for j, idx := range indices {
			sample[j] = data[idx]
		}
		f.trees[i] = &tree{Root: f.grow(sample, nFeatures, 0)}
	}

	f.norm = harmonicPathLength(float64(sampleSize))
	f.fitted = true
	return nil
}

func (f *Forest) grow(data [][]float64, nFeatures, depth int) *node {
	n := len(data)
	if depth >= f.maxDepth || n <= 1 {
		return &node{Size: n}
	}

	feature := f.rng.Intn(nFeatures)
	minVal, maxVal := data[0][feature], data[0][feature]
	for _, row := range data[1:] {
		if row[feature] < minVal {
			minVal = row[feature]
		}
		if row[feature] > maxVal {
			maxVal = row[feature]
		}
	}
	if minVal == maxVal {
		return &node{Size: n}
	}

	threshold := minVal + f.rng.Float64()*(maxVal-minVal)
	var left, right [][]float64
	for _, row := range data {
		if row[feature] < threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &node{
		Feature:   feature,
		Threshold: threshold,
		Left:      f.grow(left, nFeatures, depth+1),
		Right:     f.grow(right, nFeatures, depth+1),
	}
}

// Scores returns the anomaly score of every row, each in [0, 1] with
// higher meaning more anomalous.
func (f *Forest) Scores(data [][]float64) ([]float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.fitted {
		return nil, ErrNotFitted
	}
	scores := make([]float64, len(data))
	for i, row := range data {
		scores[i] = f.score(row)
	}
	return scores, nil
}

// ScoreOne returns the anomaly score of a single row.
func (f *Forest) ScoreOne(row []float64) (float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.fitted {
		return 0, ErrNotFitted
	}
	return f.score(row), nil
}

func (f *Forest) score(row []float64) float64 {
	var total float64
	for _, t := range f.trees {
		total += pathLength(row, t.Root, 0)
	}
	avg := total / float64(len(f.trees))
	// s = 2^(-E[h]/c(n)); short paths mean easy isolation.
	return math.Pow(2, -avg/f.norm)
}

func pathLength(row []float64, n *node, depth int) float64 {
	if n.Left == nil && n.Right == nil {
		return float64(depth) + harmonicPathLength(float64(n.Size))
	}
	if row[n.Feature] < n.Threshold {
		return pathLength(row, n.Left, depth+1)
	}
	return pathLength(row, n.Right, depth+1)
}

// harmonicPathLength is c(n), the average path length of an unsuccessful
// BST search: 2*H(n-1) - 2*(n-1)/n with H(k) ~ ln(k) + Euler-Mascheroni.
func harmonicPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+0.5772156649) - 2*(n-1)/n
}

// Save serializes the fitted forest so a host application can cache it
// across requests.
func (f *Forest) Save() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.fitted {
		return nil, ErrNotFitted
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	for _, v := range []any{f.nTrees, f.sampleSize, f.seed, f.maxDepth, f.norm, f.trees} {
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Load restores a forest produced by Save.
func (f *Forest) Load(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dec := gob.NewDecoder(bytes.NewBuffer(data))
	for _, v := range []any{&f.nTrees, &f.sampleSize, &f.seed, &f.maxDepth, &f.norm, &f.trees} {
		if err := dec.Decode(v); err != nil {
			return err
		}
	}
	f.rng = rand.New(rand.NewSource(f.seed))
	f.fitted = true
	return nil
}
