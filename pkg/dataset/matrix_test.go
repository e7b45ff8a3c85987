package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatrix(t *testing.T) {
	ds, err := New(
		NumericColumn("x", []float64{1, 2, math.NaN(), 4}),
		NumericColumn("constant", []float64{7, 7, 7, 7}),
		CategoricalColumn("label", []string{"a", "b", "c", "d"}),
	)
	require.NoError(t, err)

	t.Run("imputes and standardizes", func(t *testing.T) {
		fm, err := BuildMatrix(ds, []string{"x"})
		require.NoError(t, err)
		require.Len(t, fm.Rows, 4)

		// Median of {1,2,4} is 2, so the imputed column is {1,2,2,4}.
		// After z-scoring it must have zero mean and no NaN.
		sum := 0.0
		for _, row := range fm.Rows {
			require.Len(t, row, 1)
			assert.False(t, math.IsNaN(row[0]))
			sum += row[0]
		}
		assert.InDelta(t, 0, sum, 1e-9)

		// Equal source values stay equal after standardization.
		assert.Equal(t, fm.Rows[1][0], fm.Rows[2][0])
	})

	t.Run("constant column becomes zeros", func(t *testing.T) {
		fm, err := BuildMatrix(ds, []string{"constant"})
		require.NoError(t, err)
		for _, row := range fm.Rows {
			assert.Zero(t, row[0])
		}
	})

	t.Run("empty selection", func(t *testing.T) {
		_, err := BuildMatrix(ds, nil)
		assert.ErrorIs(t, err, ErrNoNumericColumns)
	})

	t.Run("categorical column rejected", func(t *testing.T) {
		_, err := BuildMatrix(ds, []string{"label"})
		assert.ErrorIs(t, err, ErrNoNumericColumns)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := BuildMatrix(ds, []string{"nope"})
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("all missing column", func(t *testing.T) {
		empty, err := New(NumericColumn("x", []float64{math.NaN(), math.NaN()}))
		require.NoError(t, err)
		_, err = BuildMatrix(empty, []string{"x"})
		assert.ErrorIs(t, err, ErrAllMissing)
	})

	t.Run("column order follows selection", func(t *testing.T) {
		fm, err := BuildMatrix(ds, []string{"constant", "x"})
		require.NoError(t, err)
		assert.Equal(t, []string{"constant", "x"}, fm.Columns)
		assert.Len(t, fm.Rows[0], 2)
	})
}
