package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashlens/dashlens/pkg/dataset"
)

func fixtureDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NumericColumn("amount", []float64{10, 20, 30, 40, math.NaN()}),
		dataset.CategoricalColumn("region", []string{"north", "south", "north", "west", "north"}),
		dataset.CategoricalColumn("status", []string{"won", "lost", "won", "won", "lost"}),
	)
	require.NoError(t, err)
	return ds
}

func TestEvaluateBaseOps(t *testing.T) {
	ds := fixtureDataset(t)

	tests := []struct {
		name string
		spec Spec
		want float64
	}{
		{name: "count rows", spec: Spec{Name: "rows", Operation: OpCount}, want: 5},
		{name: "count column skips missing", spec: Spec{Name: "n", Operation: OpCount, Column: "amount"}, want: 4},
		{name: "sum", spec: Spec{Name: "total", Operation: OpSum, Column: "amount"}, want: 100},
		{name: "mean", spec: Spec{Name: "avg", Operation: OpMean, Column: "amount"}, want: 25},
		{name: "median", spec: Spec{Name: "med", Operation: OpMedian, Column: "amount"}, want: 25},
		{name: "min", spec: Spec{Name: "min", Operation: OpMin, Column: "amount"}, want: 10},
		{name: "max", spec: Spec{Name: "max", Operation: OpMax, Column: "amount"}, want: 40},
		{name: "nunique", spec: Spec{Name: "regions", Operation: OpNUnique, Column: "region"}, want: 3},
		{
			name: "scoped by where",
			spec: Spec{
				Name:      "north total",
				Operation: OpSum,
				Column:    "amount",
				Where:     []dataset.Filter{{Column: "region", Op: dataset.OpEq, Value: "north"}},
			},
			want: 40, // rows 0 and 2; row 4 has a missing amount
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(ds, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateDerivedOps(t *testing.T) {
	ds := fixtureDataset(t)

	winRate := Spec{
		Name:      "win rate",
		Operation: OpPct,
		Numerator: &Operand{
			Operation: OpCount,
			Where:     []dataset.Filter{{Column: "status", Op: dataset.OpEq, Value: "won"}},
		},
		Denominator: &Operand{Operation: OpCount},
	}
	got, err := Evaluate(ds, winRate)
	require.NoError(t, err)
	assert.InDelta(t, 60, got, 1e-9)

	ratio := Spec{
		Name:        "avg per row",
		Operation:   OpRatio,
		Numerator:   &Operand{Operation: OpSum, Column: "amount"},
		Denominator: &Operand{Operation: OpCount},
	}
	got, err = Evaluate(ds, ratio)
	require.NoError(t, err)
	assert.InDelta(t, 20, got, 1e-9)
}

func TestEvaluateNaNCases(t *testing.T) {
	ds := fixtureDataset(t)

	t.Run("unknown column", func(t *testing.T) {
		got, err := Evaluate(ds, Spec{Name: "x", Operation: OpSum, Column: "nope"})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})

	t.Run("zero denominator", func(t *testing.T) {
		got, err := Evaluate(ds, Spec{
			Name:      "div by zero",
			Operation: OpRatio,
			Numerator: &Operand{Operation: OpCount},
			Denominator: &Operand{
				Operation: OpCount,
				Where:     []dataset.Filter{{Column: "region", Op: dataset.OpEq, Value: "mars"}},
			},
		})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})

	t.Run("mean of categorical", func(t *testing.T) {
		got, err := Evaluate(ds, Spec{Name: "x", Operation: OpMean, Column: "region"})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})
}

func TestSpecValidate(t *testing.T) {
	columns := []string{"amount", "region", "status"}

	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{name: "valid base", spec: Spec{Name: "total", Operation: OpSum, Column: "amount"}},
		{name: "count needs no column", spec: Spec{Name: "rows", Operation: OpCount}},
		{name: "missing name", spec: Spec{Operation: OpCount}, wantErr: true},
		{name: "unknown operation", spec: Spec{Name: "x", Operation: "stddev", Column: "amount"}, wantErr: true},
		{name: "sum without column", spec: Spec{Name: "x", Operation: OpSum}, wantErr: true},
		{name: "unknown column", spec: Spec{Name: "x", Operation: OpSum, Column: "nope"}, wantErr: true},
		{name: "unsafe column name", spec: Spec{Name: "x", Operation: OpSum, Column: "a;drop"}, wantErr: true},
		{
			name:    "ratio missing operands",
			spec:    Spec{Name: "x", Operation: OpRatio},
			wantErr: true,
		},
		{
			name: "ratio with derived operand",
			spec: Spec{
				Name:        "x",
				Operation:   OpRatio,
				Numerator:   &Operand{Operation: OpPct},
				Denominator: &Operand{Operation: OpCount},
			},
			wantErr: true,
		},
		{
			name: "bad filter op",
			spec: Spec{
				Name:      "x",
				Operation: OpCount,
				Where:     []dataset.Filter{{Column: "region", Op: "like", Value: "n"}},
			},
			wantErr: true,
		},
		{
			name: "valid ratio",
			spec: Spec{
				Name:        "x",
				Operation:   OpRatio,
				Numerator:   &Operand{Operation: OpSum, Column: "amount"},
				Denominator: &Operand{Operation: OpCount},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate(columns)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSpec)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadSpecs(t *testing.T) {
	data := []byte(`
- name: Total Amount
  operation: sum
  column: amount
  format: currency
- name: Win Rate
  operation: pct
  numerator:
    operation: count
    where:
      - column: status
        op: eq
        value: won
  denominator:
    operation: count
  help: Share of won deals
`)

	specs, err := LoadSpecs(data, []string{"amount", "status"})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, OpSum, specs[0].Operation)
	assert.Equal(t, "currency", specs[0].Format)
	assert.Equal(t, OpPct, specs[1].Operation)
	require.NotNil(t, specs[1].Numerator)
	assert.Equal(t, dataset.OpEq, specs[1].Numerator.Where[0].Op)

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadSpecs([]byte("{not yaml"), nil)
		assert.Error(t, err)
	})

	t.Run("invalid spec", func(t *testing.T) {
		_, err := LoadSpecs([]byte("- name: x\n  operation: magic\n"), nil)
		assert.ErrorIs(t, err, ErrInvalidSpec)
	})
}

func TestEvaluateAll(t *testing.T) {
	ds := fixtureDataset(t)
	specs := []Spec{
		{Name: "Total", Operation: OpSum, Column: "amount", Format: "currency"},
		{Name: "A very long metric name indeed", Operation: OpCount},
		{
			Name:        "Win Rate",
			Operation:   OpPct,
			Numerator:   &Operand{Operation: OpCount, Where: []dataset.Filter{{Column: "status", Op: dataset.OpEq, Value: "won"}}},
			Denominator: &Operand{Operation: OpCount},
		},
	}

	kpis, err := EvaluateAll(ds, specs)
	require.NoError(t, err)
	require.Len(t, kpis, 3)

	assert.Equal(t, "$100.00", kpis[0].Value)
	assert.Len(t, kpis[1].Name, 24)
	// pct defaults to percent formatting.
	assert.Equal(t, "60.00%", kpis[2].Value)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		format string
		want   string
	}{
		{name: "nan", value: math.NaN(), format: "auto", want: "N/A"},
		{name: "integer grouping", value: 1234567, format: "integer", want: "1,234,567"},
		{name: "currency", value: 1234.5, format: "currency", want: "$1,234.50"},
		{name: "percent", value: 12.3456, format: "percent", want: "12.35%"},
		{name: "days", value: 3.14, format: "days", want: "3.1 days"},
		{name: "auto large", value: 12345.6, format: "auto", want: "12,346"},
		{name: "auto mid", value: 12.346, format: "auto", want: "12.35"},
		{name: "auto small", value: 0.12345, format: "auto", want: "0.1235"},
		{name: "negative grouping", value: -1234567, format: "integer", want: "-1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.value, tt.format))
		})
	}
}
