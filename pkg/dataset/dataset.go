// Package dataset provides the cleaned tabular data model shared by the
// anomaly, forecast, metrics and insight packages.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Kind is the declared type of a column.
type Kind int

const (
	// Numeric columns hold float64 values.
	Numeric Kind = iota
	// Categorical columns hold string labels.
	Categorical
)

var (
	// ErrUnknownColumn is returned when a requested column does not exist.
	ErrUnknownColumn = errors.New("dataset: unknown column")
	// ErrLengthMismatch is returned when columns have differing row counts.
	ErrLengthMismatch = errors.New("dataset: columns must have equal length")
)

// Column is a single typed column. Missing cells are marked in Valid.
// Numeric columns use Nums, categorical columns use Strs; the unused
// slice is nil.
type Column struct {
	Name  string
	Kind  Kind
	Nums  []float64
	Strs  []string
	Valid []bool
}

// NumericColumn builds a numeric column. NaN values are treated as missing.
func NumericColumn(name string, values []float64) Column {
	nums := make([]float64, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		nums[i] = v
		valid[i] = true
	}
	return Column{Name: name, Kind: Numeric, Nums: nums, Valid: valid}
}

// CategoricalColumn builds a categorical column. Empty labels are treated
// as missing.
func CategoricalColumn(name string, labels []string) Column {
	strs := make([]string, len(labels))
	valid := make([]bool, len(labels))
	for i, s := range labels {
		if s == "" {
			continue
		}
		strs[i] = s
		valid[i] = true
	}
	return Column{Name: name, Kind: Categorical, Strs: strs, Valid: valid}
}

func (c Column) len() int {
	if c.Kind == Numeric {
		return len(c.Nums)
	}
	return len(c.Strs)
}

// Dataset is an ordered, column-typed table. It is immutable once built;
// derived views (filters, row selections) copy into new datasets so the
// core stays free of shared mutable state.
type Dataset struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a dataset from columns. All columns must share one length.
func New(cols ...Column) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			ds.rows = c.len()
		} else if c.len() != ds.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d",
				ErrLengthMismatch, c.Name, c.len(), ds.rows)
		}
		if _, dup := ds.index[c.Name]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", c.Name)
		}
		ds.index[c.Name] = i
		ds.cols = append(ds.cols, c)
	}
	return ds, nil
}

// Len returns the number of rows.
func (ds *Dataset) Len() int { return ds.rows }

// Columns returns the column names in declaration order.
func (ds *Dataset) Columns() []string {
	names := make([]string, len(ds.cols))
	for i, c := range ds.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (ds *Dataset) Column(name string) (Column, error) {
	i, ok := ds.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return ds.cols[i], nil
}

// NumericColumns returns the names of all numeric columns.
func (ds *Dataset) NumericColumns() []string {
	var names []string
	for _, c := range ds.cols {
		if c.Kind == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// CategoricalColumns returns the names of all categorical columns.
func (ds *Dataset) CategoricalColumns() []string {
	var names []string
	for _, c := range ds.cols {
		if c.Kind == Categorical {
			names = append(names, c.Name)
		}
	}
	return names
}

// Series returns the valid values of a numeric column in row order,
// skipping missing cells.
func (ds *Dataset) Series(name string) ([]float64, error) {
	c, err := ds.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Numeric {
		return nil, fmt.Errorf("dataset: column %q is not numeric", name)
	}
	out := make([]float64, 0, len(c.Nums))
	for i, v := range c.Nums {
		if c.Valid[i] {
			out = append(out, v)
		}
	}
	return out, nil
}

// Select returns a new dataset containing the given rows, in the given
// order. Indices must be in range.
func (ds *Dataset) Select(rows []int) (*Dataset, error) {
	cols := make([]Column, len(ds.cols))
	for ci, c := range ds.cols {
		nc := Column{Name: c.Name, Kind: c.Kind, Valid: make([]bool, len(rows))}
		if c.Kind == Numeric {
			nc.Nums = make([]float64, len(rows))
		} else {
			nc.Strs = make([]string, len(rows))
		}
		for ri, r := range rows {
			if r < 0 || r >= ds.rows {
				return nil, fmt.Errorf("dataset: row index %d out of range [0, %d)", r, ds.rows)
			}
			nc.Valid[ri] = c.Valid[r]
			if c.Kind == Numeric {
				nc.Nums[ri] = c.Nums[r]
			} else {
				nc.Strs[ri] = c.Strs[r]
			}
		}
		cols[ci] = nc
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Missingness returns the fraction of missing cells across the whole
// table, in percent. An empty dataset counts as fully missing.
func (ds *Dataset) Missingness() float64 {
	total := ds.rows * len(ds.cols)
	if total == 0 {
		return 100
	}
	missing := 0
	for _, c := range ds.cols {
		for _, ok := range c.Valid {
			if !ok {
				missing++
			}
		}
	}
	return float64(missing) / float64(total) * 100
}

// median returns the median of values, which must be non-empty.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
