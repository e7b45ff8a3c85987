// Package metrics evaluates a small, validated KPI definition language
// over a dataset: base aggregations plus ratio/percent combinations,
// each scoped by row filters.
package metrics

import (
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dashlens/dashlens/pkg/dataset"
)

// Op is a metric aggregation operation.
type Op string

// Supported operations. Ratio and Pct are derived from a numerator and
// denominator restricted to base operations.
const (
	OpCount   Op = "count"
	OpSum     Op = "sum"
	OpMean    Op = "mean"
	OpMedian  Op = "median"
	OpMin     Op = "min"
	OpMax     Op = "max"
	OpNUnique Op = "nunique"
	OpRatio   Op = "ratio"
	OpPct     Op = "pct"
)

// ErrInvalidSpec is returned when a metric definition fails validation.
var ErrInvalidSpec = errors.New("metrics: invalid spec")

var columnNameRe = regexp.MustCompile(`^[\w\s\-\(\)%./:]+$`)

// Operand is the numerator or denominator of a derived metric.
type Operand struct {
	Operation Op               `yaml:"operation"`
	Column    string           `yaml:"column,omitempty"`
	Where     []dataset.Filter `yaml:"where,omitempty"`
}

// Spec defines one KPI. Where filters scope the metric before
// aggregation; Format selects the display rendering.
type Spec struct {
	Name        string           `yaml:"name"`
	Operation   Op               `yaml:"operation"`
	Column      string           `yaml:"column,omitempty"`
	Numerator   *Operand         `yaml:"numerator,omitempty"`
	Denominator *Operand         `yaml:"denominator,omitempty"`
	Where       []dataset.Filter `yaml:"where,omitempty"`
	Format      string           `yaml:"format,omitempty"`
	Help        string           `yaml:"help,omitempty"`
}

func baseOp(op Op) bool {
	switch op {
	case OpCount, OpSum, OpMean, OpMedian, OpMin, OpMax, OpNUnique:
		return true
	}
	return false
}

// Validate checks a spec against the dataset's columns. Passing nil
// columns skips column existence checks (name safety is still enforced).
func (s *Spec) Validate(columns []string) error {
	if s.Name == "" {
		return fmt.Errorf("%w: metric name is required", ErrInvalidSpec)
	}
	if !baseOp(s.Operation) && s.Operation != OpRatio && s.Operation != OpPct {
		return fmt.Errorf("%w: unsupported operation %q", ErrInvalidSpec, s.Operation)
	}

	if s.Operation == OpRatio || s.Operation == OpPct {
		if s.Numerator == nil || s.Denominator == nil {
			return fmt.Errorf("%w: %s requires numerator and denominator", ErrInvalidSpec, s.Operation)
		}
		for _, operand := range []*Operand{s.Numerator, s.Denominator} {
			if !baseOp(operand.Operation) {
				return fmt.Errorf("%w: operands only support base operations, got %q",
					ErrInvalidSpec, operand.Operation)
			}
			if operand.Column != "" {
				if err := validateColumn(operand.Column, columns); err != nil {
					return err
				}
			}
			if err := validateWhere(operand.Where, columns); err != nil {
				return err
			}
		}
	} else if s.Column != "" {
		if err := validateColumn(s.Column, columns); err != nil {
			return err
		}
	} else if s.Operation != OpCount {
		return fmt.Errorf("%w: %s requires a column", ErrInvalidSpec, s.Operation)
	}

	return validateWhere(s.Where, columns)
}

func validateColumn(name string, columns []string) error {
	if !columnNameRe.MatchString(name) {
		return fmt.Errorf("%w: unsafe column name %q", ErrInvalidSpec, name)
	}
	if columns == nil {
		return nil
	}
	for _, c := range columns {
		if c == name {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown column %q", ErrInvalidSpec, name)
}

func validateWhere(where []dataset.Filter, columns []string) error {
	for _, f := range where {
		if err := validateColumn(f.Column, columns); err != nil {
			return err
		}
		if !dataset.ValidFilterOp(f.Op) {
			return fmt.Errorf("%w: unsupported filter op %q", ErrInvalidSpec, f.Op)
		}
	}
	return nil
}

// LoadSpecs parses YAML metric definitions and validates each against
// the dataset's columns.
func LoadSpecs(data []byte, columns []string) ([]Spec, error) {
	var specs []Spec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("metrics: parse specs: %w", err)
	}
	for i := range specs {
		if err := specs[i].Validate(columns); err != nil {
			return nil, err
		}
	}
	return specs, nil
}
