package briefing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dashlens/dashlens/pkg/metrics"
)

// Provenance records where the brief's numbers came from.
type Provenance struct {
	TotalRows    int      `json:"total_rows"`
	FilteredRows int      `json:"filtered_rows"`
	Columns      int      `json:"columns"`
	Filters      []string `json:"filters,omitempty"`
	Source       string   `json:"source,omitempty"`
	Limitations  string   `json:"limitations,omitempty"`
}

// Brief is a board-ready summary of the current dashboard state.
type Brief struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Summary     string        `json:"summary"`
	KPIs        []metrics.KPI `json:"kpis"`
	Cards       []Card        `json:"decisions"`
	Risks       []string      `json:"risks"`
	Assumptions []string      `json:"assumptions"`
	Actions     []string      `json:"actions"`
	Provenance  Provenance    `json:"provenance"`
}

// riskTags mark insight lines that read as warnings.
var riskTags = []string{"missing", "outlier", "risk", "warning"}

// Build assembles a brief from evaluated KPIs, decision cards and
// free-form insight lines. Insights matching a risk tag become the risk
// section; at most three cards and three assumptions are kept.
func Build(kpis []metrics.KPI, cards []Card, insights []string, prov Provenance) *Brief {
	summary := fmt.Sprintf(
		"Filtered scope includes %d of %d rows across %d columns. "+
			"Primary opportunities and risks are evidence-backed and action-oriented for leadership review.",
		prov.FilteredRows, prov.TotalRows, prov.Columns)

	var risks []string
	for _, ins := range insights {
		lower := strings.ToLower(ins)
		for _, tag := range riskTags {
			if strings.Contains(lower, tag) {
				risks = append(risks, ins)
				break
			}
		}
		if len(risks) == 3 {
			break
		}
	}
	if len(risks) == 0 {
		if len(insights) > 0 {
			risks = insights
			if len(risks) > 2 {
				risks = risks[:2]
			}
		} else {
			risks = []string{"No explicit risk signal detected in current filters."}
		}
	}

	assumptions := []string{
		"All conclusions are based on the currently filtered dataset snapshot.",
		"Recommendations assume metric definitions are semantically correct for uploaded columns.",
	}
	if prov.Limitations != "" {
		assumptions = append(assumptions, "Source limitation noted: "+prov.Limitations)
	}

	actions := []string{
		"Day 1-2: Validate top opportunity segment with domain owner and lock target metric.",
		"Day 3-4: Launch focused intervention on top risk segment and monitor KPI drift daily.",
		"Day 5-7: Review outcomes, document wins, and adjust filters/thresholds for next cycle.",
	}

	if len(cards) > 3 {
		cards = cards[:3]
	}

	return &Brief{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Summary:     summary,
		KPIs:        kpis,
		Cards:       cards,
		Risks:       risks,
		Assumptions: assumptions,
		Actions:     actions,
		Provenance:  prov,
	}
}

// Markdown renders the brief for export.
func (b *Brief) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Board Brief\n\n")
	fmt.Fprintf(&sb, "Generated at: %s (report %s)\n\n", b.GeneratedAt.Format(time.RFC3339), b.ID)

	sb.WriteString("## Executive Summary\n")
	sb.WriteString(b.Summary + "\n\n")

	sb.WriteString("## KPI Snapshot\n")
	if len(b.KPIs) == 0 {
		sb.WriteString("- No KPI data available\n")
	}
	for _, k := range b.KPIs {
		fmt.Fprintf(&sb, "- **%s**: %s", k.Name, k.Value)
		if k.Help != "" {
			fmt.Fprintf(&sb, " - %s", k.Help)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Decisions With Evidence\n")
	if len(b.Cards) == 0 {
		sb.WriteString("No decision cards available.\n")
	}
	for _, c := range b.Cards {
		fmt.Fprintf(&sb, "### %s\n", c.Title)
		fmt.Fprintf(&sb, "- Metric delta: %s\n", c.Delta)
		fmt.Fprintf(&sb, "- Expected impact: %s\n", c.Impact)
		fmt.Fprintf(&sb, "- Rationale: %s\n", c.Rationale)
		fmt.Fprintf(&sb, "- Evidence: %s\n", c.Evidence)
	}
	sb.WriteString("\n")

	sb.WriteString("## Risks and Assumptions\n### Risks\n")
	for _, r := range b.Risks {
		fmt.Fprintf(&sb, "- %s\n", r)
	}
	sb.WriteString("\n### Assumptions\n")
	for _, a := range b.Assumptions {
		fmt.Fprintf(&sb, "- %s\n", a)
	}
	sb.WriteString("\n")

	sb.WriteString("## 7-Day Action Plan\n")
	for _, a := range b.Actions {
		fmt.Fprintf(&sb, "- %s\n", a)
	}
	sb.WriteString("\n")

	sb.WriteString("## Provenance\n")
	fmt.Fprintf(&sb, "- Total rows: %d\n", b.Provenance.TotalRows)
	fmt.Fprintf(&sb, "- Filtered rows: %d\n", b.Provenance.FilteredRows)
	fmt.Fprintf(&sb, "- Columns: %d\n", b.Provenance.Columns)
	filters := "No active filters"
	if len(b.Provenance.Filters) > 0 {
		filters = strings.Join(b.Provenance.Filters, ", ")
	}
	fmt.Fprintf(&sb, "- Active filters: %s\n", filters)
	fmt.Fprintf(&sb, "- Source system: %s\n", b.Provenance.Source)

	return sb.String()
}
