package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name      string
		in        ConfidenceInput
		wantLabel string
	}{
		{
			name:      "no rows",
			in:        ConfidenceInput{TotalRows: 0},
			wantLabel: "Low",
		},
		{
			name: "full coverage clean data",
			in: ConfidenceInput{
				RowsUsed:        100,
				TotalRows:       100,
				MetricsComputed: 3,
				MissingPct:      0,
				PlanValid:       true,
			},
			wantLabel: "High",
		},
		{
			name: "partial coverage",
			in: ConfidenceInput{
				RowsUsed:        50,
				TotalRows:       100,
				MetricsComputed: 2,
				MissingPct:      10,
				PlanValid:       true,
			},
			wantLabel: "Medium",
		},
		{
			name: "sparse and invalid plan",
			in: ConfidenceInput{
				RowsUsed:        5,
				TotalRows:       100,
				MetricsComputed: 0,
				MissingPct:      80,
				PlanValid:       false,
			},
			wantLabel: "Low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreConfidence(tt.in)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.GreaterOrEqual(t, got.Score, 0.0)
			assert.LessOrEqual(t, got.Score, 1.0)
			assert.NotEmpty(t, got.Rationale)
		})
	}
}

func TestScoreConfidenceRSquaredBonus(t *testing.T) {
	base := ConfidenceInput{
		RowsUsed:        80,
		TotalRows:       100,
		MetricsComputed: 3,
		PlanValid:       true,
	}

	withFit := base
	withFit.RSquared = 1
	withFit.RSquaredValid = true

	assert.Greater(t, ScoreConfidence(withFit).Score, ScoreConfidence(base).Score)
}

func TestScoreConfidenceMissingnessPenaltyCapped(t *testing.T) {
	heavy := ConfidenceInput{
		RowsUsed:        100,
		TotalRows:       100,
		MetricsComputed: 3,
		MissingPct:      100,
		PlanValid:       true,
	}
	extreme := heavy
	extreme.MissingPct = 500

	assert.Equal(t, ScoreConfidence(heavy).Score, ScoreConfidence(extreme).Score)
}
