package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dashlens/dashlens/pkg/dataset"
)

// KPI is one evaluated metric ready for display.
type KPI struct {
	Name  string  `json:"name"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
	Help  string  `json:"help,omitempty"`
}

// MaxKPIs bounds how many metrics a single snapshot evaluates.
const MaxKPIs = 5

// Evaluate computes one metric over the dataset. Missing columns and
// empty scopes evaluate to NaN, which FormatValue renders as "N/A"; the
// spec itself must already be validated.
func Evaluate(ds *dataset.Dataset, spec Spec) (float64, error) {
	scoped, err := dataset.Apply(ds, spec.Where)
	if err != nil {
		return math.NaN(), err
	}

	if baseOp(spec.Operation) {
		return evalBase(scoped, spec.Operation, spec.Column), nil
	}

	num, err := evalOperand(scoped, spec.Numerator)
	if err != nil {
		return math.NaN(), err
	}
	den, err := evalOperand(scoped, spec.Denominator)
	if err != nil {
		return math.NaN(), err
	}
	if den == 0 || math.IsNaN(den) {
		return math.NaN(), nil
	}
	ratio := num / den
	if spec.Operation == OpPct {
		return ratio * 100, nil
	}
	return ratio, nil
}

func evalOperand(ds *dataset.Dataset, operand *Operand) (float64, error) {
	if operand == nil {
		return math.NaN(), nil
	}
	scoped, err := dataset.Apply(ds, operand.Where)
	if err != nil {
		return math.NaN(), err
	}
	return evalBase(scoped, operand.Operation, operand.Column), nil
}

func evalBase(ds *dataset.Dataset, op Op, column string) float64 {
	if op == OpCount {
		if column == "" {
			return float64(ds.Len())
		}
		c, err := ds.Column(column)
		if err != nil {
			return math.NaN()
		}
		n := 0
		for _, ok := range c.Valid {
			if ok {
				n++
			}
		}
		return float64(n)
	}

	c, err := ds.Column(column)
	if err != nil {
		return math.NaN()
	}

	if op == OpNUnique {
		seen := make(map[string]struct{})
		for i := 0; i < ds.Len(); i++ {
			if !c.Valid[i] {
				continue
			}
			if c.Kind == dataset.Numeric {
				seen[fmt.Sprint(c.Nums[i])] = struct{}{}
			} else {
				seen[c.Strs[i]] = struct{}{}
			}
		}
		return float64(len(seen))
	}

	if c.Kind != dataset.Numeric {
		return math.NaN()
	}
	values := make([]float64, 0, ds.Len())
	for i, v := range c.Nums {
		if c.Valid[i] {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return math.NaN()
	}

	switch op {
	case OpSum:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum
	case OpMean:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	case OpMedian:
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		n := len(sorted)
		if n%2 == 0 {
			return (sorted[n/2-1] + sorted[n/2]) / 2
		}
		return sorted[n/2]
	case OpMin:
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case OpMax:
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	}
	return math.NaN()
}

// EvaluateAll evaluates up to MaxKPIs specs into display-ready KPIs.
func EvaluateAll(ds *dataset.Dataset, specs []Spec) ([]KPI, error) {
	if len(specs) > MaxKPIs {
		specs = specs[:MaxKPIs]
	}
	kpis := make([]KPI, 0, len(specs))
	for _, spec := range specs {
		raw, err := Evaluate(ds, spec)
		if err != nil {
			return nil, err
		}
		format := spec.Format
		if spec.Operation == OpPct && (format == "" || format == "auto") {
			format = "percent"
		}
		name := spec.Name
		if len(name) > 24 {
			name = name[:24]
		}
		kpis = append(kpis, KPI{Name: name, Value: FormatValue(raw, format), Raw: raw, Help: spec.Help})
	}
	return kpis, nil
}

// FormatValue renders a metric value for display. NaN becomes "N/A" so
// downstream serialization never sees a non-finite number.
func FormatValue(v float64, format string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	switch format {
	case "integer":
		return group(fmt.Sprintf("%.0f", math.Round(v)))
	case "currency":
		return "$" + group(fmt.Sprintf("%.2f", v))
	case "percent":
		return group(fmt.Sprintf("%.2f", v)) + "%"
	case "days":
		return group(fmt.Sprintf("%.1f", v)) + " days"
	}
	switch {
	case math.Abs(v) >= 100:
		return group(fmt.Sprintf("%.0f", v))
	case math.Abs(v) >= 1:
		return group(fmt.Sprintf("%.2f", v))
	default:
		return group(fmt.Sprintf("%.4f", v))
	}
}

// group inserts thousands separators into the integer part of a
// formatted number.
func group(s string) string {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) > 3 {
		var out []byte
		lead := len(intPart) % 3
		if lead > 0 {
			out = append(out, intPart[:lead]...)
		}
		for i := lead; i < len(intPart); i += 3 {
			if len(out) > 0 {
				out = append(out, ',')
			}
			out = append(out, intPart[i:i+3]...)
		}
		intPart = string(out)
	}
	if neg {
		return "-" + intPart + frac
	}
	return intPart + frac
}
