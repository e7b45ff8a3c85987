// Package briefing turns dataset comparisons and KPI snapshots into
// decision cards and a leadership board brief.
package briefing

import (
	"fmt"
	"math"
	"sort"

	"github.com/dashlens/dashlens/pkg/dataset"
	"github.com/dashlens/dashlens/pkg/metrics"
)

// Card is one evidence-backed decision card.
type Card struct {
	Title     string `json:"title"`
	Delta     string `json:"metric_delta"`
	Impact    string `json:"impact_estimate"`
	Rationale string `json:"rationale"`
	Evidence  string `json:"evidence"`
}

// shift is a mean comparison of one numeric column between the full
// dataset and the filtered segment.
type shift struct {
	column   string
	fullMean float64
	filtMean float64
	delta    float64
	deltaPct float64
}

// BuildCards compares filtered means against the full-dataset baseline
// and emits the strongest opportunity, the strongest risk, and a
// next-action card from the dominant categorical segment. The result is
// always padded to exactly three cards.
func BuildCards(full, filtered *dataset.Dataset, numericCols, categoricalCols []string) []Card {
	var cards []Card

	shifts := numericShifts(full, filtered, numericCols)
	if len(shifts) > 0 {
		sort.SliceStable(shifts, func(a, b int) bool { return shifts[a].deltaPct > shifts[b].deltaPct })
		opp := shifts[0]
		cards = append(cards, Card{
			Title: "Biggest Opportunity",
			Delta: fmt.Sprintf("%s: %s (%.1f%%)", opp.column, formatNumber(opp.delta), opp.deltaPct),
			Impact: fmt.Sprintf("If sustained, expected directional lift is about %.1f%% versus full-dataset baseline.",
				math.Abs(opp.deltaPct)),
			Rationale: fmt.Sprintf("Filtered segment outperforms baseline for %s and is the strongest positive shift.",
				opp.column),
			Evidence: fmt.Sprintf("Baseline mean %s, filtered mean %s.",
				formatNumber(opp.fullMean), formatNumber(opp.filtMean)),
		})

		risk := shifts[len(shifts)-1]
		cards = append(cards, Card{
			Title: "Biggest Risk",
			Delta: fmt.Sprintf("%s: %s (%.1f%%)", risk.column, formatNumber(risk.delta), risk.deltaPct),
			Impact: fmt.Sprintf("Current downside exposure is approximately %.1f%% from baseline behavior.",
				math.Abs(risk.deltaPct)),
			Rationale: "This is the largest negative movement against the full-dataset benchmark.",
			Evidence: fmt.Sprintf("Baseline mean %s, filtered mean %s.",
				formatNumber(risk.fullMean), formatNumber(risk.filtMean)),
		})
	}

	if len(categoricalCols) > 0 && filtered.Len() > 0 {
		if card, ok := segmentCard(filtered, categoricalCols[0]); ok {
			cards = append(cards, card)
		}
	}

	for len(cards) < 3 {
		title := "Biggest Opportunity"
		if len(cards) == 2 {
			title = "Recommended Next Action"
		}
		cards = append(cards, Card{
			Title:     title,
			Delta:     "Insufficient stable signal",
			Impact:    "Gather more rows or broaden filters for stronger confidence.",
			Rationale: "Current sample does not provide enough contrast across segments.",
			Evidence:  fmt.Sprintf("Filtered rows: %d.", filtered.Len()),
		})
	}
	return cards[:3]
}

func numericShifts(full, filtered *dataset.Dataset, columns []string) []shift {
	var shifts []shift
	for _, col := range columns {
		fullVals, err := full.Series(col)
		if err != nil || len(fullVals) == 0 {
			continue
		}
		filtVals, err := filtered.Series(col)
		if err != nil || len(filtVals) == 0 {
			continue
		}
		fullMean := mean(fullVals)
		filtMean := mean(filtVals)
		delta := filtMean - fullMean
		deltaPct := 0.0
		if fullMean != 0 {
			deltaPct = delta / fullMean * 100
		}
		shifts = append(shifts, shift{
			column:   col,
			fullMean: fullMean,
			filtMean: filtMean,
			delta:    delta,
			deltaPct: deltaPct,
		})
	}
	return shifts
}

// segmentCard finds the dominant label of a categorical column.
func segmentCard(ds *dataset.Dataset, column string) (Card, bool) {
	c, err := ds.Column(column)
	if err != nil || c.Kind != dataset.Categorical {
		return Card{}, false
	}

	counts := make(map[string]int)
	order := make(map[string]int)
	for i := 0; i < ds.Len(); i++ {
		label := "(Missing)"
		if c.Valid[i] {
			label = c.Strs[i]
		}
		if _, seen := counts[label]; !seen {
			order[label] = i
		}
		counts[label]++
	}
	if len(counts) == 0 {
		return Card{}, false
	}

	top := ""
	for label := range counts {
		if top == "" {
			top = label
			continue
		}
		if counts[label] > counts[top] || (counts[label] == counts[top] && order[label] < order[top]) {
			top = label
		}
	}

	share := float64(counts[top]) / float64(ds.Len()) * 100
	return Card{
		Title:     "Recommended Next Action",
		Delta:     fmt.Sprintf("Focus on %s: %s (%.1f%% share)", column, top, share),
		Impact:    "Prioritizing the dominant segment should accelerate measurable gains in the next 7 days.",
		Rationale: "Concentrating intervention on the most frequent segment maximizes near-term operational impact.",
		Evidence:  fmt.Sprintf("%s appears %d times in the current filtered scope.", top, counts[top]),
	}, true
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// formatNumber matches the KPI auto format so cards and KPI tiles render
// numbers identically.
func formatNumber(v float64) string {
	return metrics.FormatValue(v, "auto")
}
