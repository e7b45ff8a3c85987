package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr bool
	}{
		{
			name: "matching lengths",
			cols: []Column{
				NumericColumn("x", []float64{1, 2, 3}),
				CategoricalColumn("label", []string{"a", "b", "c"}),
			},
		},
		{
			name: "length mismatch",
			cols: []Column{
				NumericColumn("x", []float64{1, 2, 3}),
				NumericColumn("y", []float64{1, 2}),
			},
			wantErr: true,
		},
		{
			name: "duplicate column",
			cols: []Column{
				NumericColumn("x", []float64{1}),
				NumericColumn("x", []float64{2}),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := New(tt.cols...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, ds.Len())
		})
	}
}

func TestMissingValues(t *testing.T) {
	ds, err := New(
		NumericColumn("x", []float64{1, math.NaN(), 3}),
		CategoricalColumn("label", []string{"a", "", "c"}),
	)
	require.NoError(t, err)

	series, err := ds.Series("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, series)

	// One missing cell per column out of 6 total.
	assert.InDelta(t, 100.0/3, ds.Missingness(), 1e-9)
}

func TestColumnKinds(t *testing.T) {
	ds, err := New(
		NumericColumn("x", []float64{1, 2}),
		NumericColumn("y", []float64{3, 4}),
		CategoricalColumn("label", []string{"a", "b"}),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, ds.NumericColumns())
	assert.Equal(t, []string{"label"}, ds.CategoricalColumns())

	_, err = ds.Column("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = ds.Series("label")
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	ds, err := New(
		NumericColumn("x", []float64{10, 20, 30, 40}),
		CategoricalColumn("label", []string{"a", "b", "c", "d"}),
	)
	require.NoError(t, err)

	sub, err := ds.Select([]int{3, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())

	series, err := sub.Series("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 20}, series)

	_, err = ds.Select([]int{9})
	assert.Error(t, err)
}

func TestApplyFilters(t *testing.T) {
	ds, err := New(
		NumericColumn("amount", []float64{5, 15, 25, 35}),
		CategoricalColumn("region", []string{"north", "south", "North-East", ""}),
	)
	require.NoError(t, err)

	tests := []struct {
		name     string
		filters  []Filter
		wantRows int
		wantErr  bool
	}{
		{name: "no filters", filters: nil, wantRows: 4},
		{name: "gt", filters: []Filter{{Column: "amount", Op: OpGt, Value: 15.0}}, wantRows: 2},
		{name: "gte", filters: []Filter{{Column: "amount", Op: OpGte, Value: 15.0}}, wantRows: 3},
		{name: "lt", filters: []Filter{{Column: "amount", Op: OpLt, Value: 15}}, wantRows: 1},
		{name: "lte string value", filters: []Filter{{Column: "amount", Op: OpLte, Value: "15"}}, wantRows: 2},
		{name: "eq categorical", filters: []Filter{{Column: "region", Op: OpEq, Value: "north"}}, wantRows: 1},
		{name: "neq skips missing", filters: []Filter{{Column: "region", Op: OpNeq, Value: "north"}}, wantRows: 2},
		{name: "in", filters: []Filter{{Column: "region", Op: OpIn, Value: []any{"north", "south"}}}, wantRows: 2},
		{name: "contains case-insensitive", filters: []Filter{{Column: "region", Op: OpContains, Value: "north"}}, wantRows: 2},
		{name: "stacked", filters: []Filter{
			{Column: "amount", Op: OpGt, Value: 5.0},
			{Column: "region", Op: OpEq, Value: "south"},
		}, wantRows: 1},
		{name: "unknown column", filters: []Filter{{Column: "nope", Op: OpEq, Value: 1}}, wantErr: true},
		{name: "bad op", filters: []Filter{{Column: "amount", Op: "between", Value: 1}}, wantErr: true},
		{name: "ordering on categorical", filters: []Filter{{Column: "region", Op: OpGt, Value: 1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(ds, tt.filters)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, out.Len())
		})
	}
}
