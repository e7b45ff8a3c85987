package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterOp is a row-filter comparison operator.
type FilterOp string

// Supported filter operators.
const (
	OpEq       FilterOp = "eq"
	OpNeq      FilterOp = "neq"
	OpGt       FilterOp = "gt"
	OpGte      FilterOp = "gte"
	OpLt       FilterOp = "lt"
	OpLte      FilterOp = "lte"
	OpIn       FilterOp = "in"
	OpContains FilterOp = "contains"
)

// ValidFilterOp reports whether op is a supported operator.
func ValidFilterOp(op FilterOp) bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpContains:
		return true
	}
	return false
}

// Filter restricts rows by comparing one column against a value. Value
// is a string, a float64, an int, or for OpIn a slice of those.
type Filter struct {
	Column string   `yaml:"column"`
	Op     FilterOp `yaml:"op"`
	Value  any      `yaml:"value"`
}

// Apply returns the rows matching every filter, preserving row order.
// Rows with a missing cell in a filtered column never match. Unknown
// columns are an error rather than a silent no-op.
func Apply(ds *Dataset, filters []Filter) (*Dataset, error) {
	if len(filters) == 0 {
		return ds, nil
	}

	keep := make([]bool, ds.Len())
	for i := range keep {
		keep[i] = true
	}

	for _, f := range filters {
		if !ValidFilterOp(f.Op) {
			return nil, fmt.Errorf("dataset: unsupported filter op %q", f.Op)
		}
		c, err := ds.Column(f.Column)
		if err != nil {
			return nil, err
		}
		for i := 0; i < ds.Len(); i++ {
			if !keep[i] || !c.Valid[i] {
				keep[i] = false
				continue
			}
			ok, err := matches(c, i, f)
			if err != nil {
				return nil, err
			}
			keep[i] = ok
		}
	}

	rows := make([]int, 0, ds.Len())
	for i, ok := range keep {
		if ok {
			rows = append(rows, i)
		}
	}
	return ds.Select(rows)
}

func matches(c Column, row int, f Filter) (bool, error) {
	switch f.Op {
	case OpEq, OpNeq:
		eq := cellEquals(c, row, f.Value)
		if f.Op == OpNeq {
			return !eq, nil
		}
		return eq, nil

	case OpGt, OpGte, OpLt, OpLte:
		if c.Kind != Numeric {
			return false, fmt.Errorf("dataset: filter op %q requires numeric column %q", f.Op, f.Column)
		}
		want, ok := toFloat(f.Value)
		if !ok {
			return false, fmt.Errorf("dataset: filter value %v is not numeric", f.Value)
		}
		v := c.Nums[row]
		switch f.Op {
		case OpGt:
			return v > want, nil
		case OpGte:
			return v >= want, nil
		case OpLt:
			return v < want, nil
		default:
			return v <= want, nil
		}

	case OpIn:
		options, ok := f.Value.([]any)
		if !ok {
			options = []any{f.Value}
		}
		for _, opt := range options {
			if cellEquals(c, row, opt) {
				return true, nil
			}
		}
		return false, nil

	case OpContains:
		needle := strings.ToLower(fmt.Sprint(f.Value))
		return strings.Contains(strings.ToLower(cellString(c, row)), needle), nil
	}
	return false, fmt.Errorf("dataset: unsupported filter op %q", f.Op)
}

func cellEquals(c Column, row int, want any) bool {
	if c.Kind == Numeric {
		w, ok := toFloat(want)
		return ok && c.Nums[row] == w
	}
	return c.Strs[row] == fmt.Sprint(want)
}

func cellString(c Column, row int) string {
	if c.Kind == Numeric {
		return strconv.FormatFloat(c.Nums[row], 'g', -1, 64)
	}
	return c.Strs[row]
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
