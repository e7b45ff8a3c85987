package dataset

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoNumericColumns is returned when a feature selection yields an
	// empty matrix.
	ErrNoNumericColumns = errors.New("dataset: no numeric columns selected")
	// ErrAllMissing is returned when a selected column has no usable values
	// to impute from.
	ErrAllMissing = errors.New("dataset: column has no usable values")
)

// FeatureMatrix is a numeric-only projection of a dataset. Rows are
// aligned with the source dataset; missing cells have been imputed with
// the column median and every column standardized to zero mean and unit
// variance, so no NaN ever reaches a model.
type FeatureMatrix struct {
	Columns []string
	Rows    [][]float64
}

// BuildMatrix projects the named numeric columns into a FeatureMatrix.
// Column order follows the columns argument.
func BuildMatrix(ds *Dataset, columns []string) (*FeatureMatrix, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrNoNumericColumns)
	}

	n := ds.Len()
	features := make([][]float64, len(columns))
	for j, name := range columns {
		c, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		if c.Kind != Numeric {
			return nil, fmt.Errorf("%w: column %q is categorical", ErrNoNumericColumns, name)
		}

		valid := make([]float64, 0, n)
		for i, v := range c.Nums {
			if c.Valid[i] {
				valid = append(valid, v)
			}
		}
		if len(valid) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrAllMissing, name)
		}

		// Median imputation, then z-score standardization so columns
		// with different magnitudes contribute comparably.
		med := median(valid)
		col := make([]float64, n)
		for i := range col {
			if c.Valid[i] {
				col[i] = c.Nums[i]
			} else {
				col[i] = med
			}
		}

		mean, std := stat.MeanStdDev(col, nil)
		if std > 0 && !math.IsNaN(std) {
			for i := range col {
				col[i] = (col[i] - mean) / std
			}
		} else {
			// Constant column: center it so it carries no signal.
			for i := range col {
				col[i] = 0
			}
		}
		features[j] = col
	}

	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, len(columns))
		for j := range columns {
			row[j] = features[j][i]
		}
		rows[i] = row
	}

	return &FeatureMatrix{Columns: append([]string(nil), columns...), Rows: rows}, nil
}
