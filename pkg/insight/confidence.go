package insight

import "fmt"

// Confidence grades how much trust a computed answer deserves, based on
// row coverage, metric count and missingness.
type Confidence struct {
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// ConfidenceInput collects the evidence feeding a confidence grade.
// RSquared is optional; set RSquaredValid when a model fit supplied one.
type ConfidenceInput struct {
	RowsUsed        int
	TotalRows       int
	MetricsComputed int
	MissingPct      float64
	PlanValid       bool
	RSquared        float64
	RSquaredValid   bool
}

// ScoreConfidence weighs coverage, metric depth, plan validity and fit
// quality into a 0..1 score with a High/Medium/Low label.
func ScoreConfidence(in ConfidenceInput) Confidence {
	if in.TotalRows <= 0 {
		return Confidence{Label: "Low", Score: 0, Rationale: "No rows available after filtering."}
	}

	coverage := float64(in.RowsUsed) / float64(in.TotalRows)
	if coverage > 1 {
		coverage = 1
	}
	metricFactor := float64(in.MetricsComputed) / 3
	if metricFactor > 1 {
		metricFactor = 1
	}
	missingPenalty := in.MissingPct / 100 * 0.4
	if missingPenalty < 0 {
		missingPenalty = 0
	}
	if missingPenalty > 0.4 {
		missingPenalty = 0.4
	}

	score := 0.5*coverage + 0.25*metricFactor
	if in.PlanValid {
		score += 0.15
	} else {
		score += 0.15 * 0.4
	}
	if in.RSquaredValid {
		r2 := in.RSquared
		if r2 < 0 {
			r2 = 0
		}
		if r2 > 1 {
			r2 = 1
		}
		score += 0.1 * r2
	} else {
		score += 0.05
	}

	score -= missingPenalty
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	label := "Low"
	switch {
	case score >= 0.75:
		label = "High"
	case score >= 0.5:
		label = "Medium"
	}

	rationale := fmt.Sprintf("Coverage %.1f%% of filtered rows, %d validated metric(s), missingness impact %.1f%%.",
		coverage*100, in.MetricsComputed, in.MissingPct)
	return Confidence{Label: label, Score: score, Rationale: rationale}
}
