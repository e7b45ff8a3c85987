// Package insight assembles scorer and forecaster output into a
// presentation-ready bundle for the dashboard layer.
package insight

import (
	"errors"
	"fmt"

	"github.com/dashlens/dashlens/pkg/anomaly"
	"github.com/dashlens/dashlens/pkg/dataset"
	"github.com/dashlens/dashlens/pkg/forecast"
)

// ErrRowMismatch is returned when anomaly output does not align with the
// dataset rows. The packager never drops or pads rows to compensate.
var ErrRowMismatch = errors.New("insight: result length does not match dataset rows")

// Row is one dataset row annotated for display. Cells maps column name
// to a float64, a string, or nil for a missing cell.
type Row struct {
	Index     int            `json:"index"`
	Cells     map[string]any `json:"cells"`
	Score     float64        `json:"anomaly_score"`
	IsAnomaly bool           `json:"is_anomaly"`
}

// Bundle is the combined output consumed by the UI: annotated rows for
// the table view and forecasts keyed by target column for the chart view.
type Bundle struct {
	Rows      []Row                       `json:"rows"`
	Forecasts map[string]*forecast.Result `json:"forecasts,omitempty"`
}

// Combine merges anomaly and forecast results over the source dataset.
// Either result may be nil when only one computation was requested.
// Upstream errors are expected to be handled before packaging; Combine
// only verifies alignment.
func Combine(ds *dataset.Dataset, ar *anomaly.Result, fr *forecast.Result, target string) (*Bundle, error) {
	if ds == nil {
		return nil, errors.New("insight: nil dataset")
	}
	if ar != nil && (len(ar.Scores) != ds.Len() || len(ar.Flags) != ds.Len()) {
		return nil, fmt.Errorf("%w: %d scores for %d rows", ErrRowMismatch, len(ar.Scores), ds.Len())
	}
	if fr != nil && target == "" {
		return nil, errors.New("insight: forecast result requires a target column name")
	}

	names := ds.Columns()
	cols := make([]dataset.Column, len(names))
	for i, name := range names {
		c, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	rows := make([]Row, ds.Len())
	for i := range rows {
		cells := make(map[string]any, len(cols))
		for _, c := range cols {
			if !c.Valid[i] {
				cells[c.Name] = nil
				continue
			}
			if c.Kind == dataset.Numeric {
				cells[c.Name] = c.Nums[i]
			} else {
				cells[c.Name] = c.Strs[i]
			}
		}
		row := Row{Index: i, Cells: cells}
		if ar != nil {
			row.Score = ar.Scores[i]
			row.IsAnomaly = ar.Flags[i]
		}
		rows[i] = row
	}

	b := &Bundle{Rows: rows}
	if fr != nil {
		b.Forecasts = map[string]*forecast.Result{target: fr}
	}
	return b, nil
}
