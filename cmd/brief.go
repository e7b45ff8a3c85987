package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dashlens/dashlens/pkg/briefing"
	"github.com/dashlens/dashlens/pkg/insight"
	"github.com/dashlens/dashlens/pkg/metrics"
)

var (
	briefInput  string
	briefSpecs  string
	briefOutput string
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Build a Markdown board brief from a dataset and KPI specs",
	Long: `Brief loads a CSV file and a YAML file of KPI metric definitions,
evaluates the KPIs, derives decision cards from column statistics, and
renders the assembled board brief as Markdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(briefInput)
		if err != nil {
			return err
		}

		var kpis []metrics.KPI
		if briefSpecs != "" {
			data, err := os.ReadFile(briefSpecs)
			if err != nil {
				return err
			}
			specs, err := metrics.LoadSpecs(data, ds.Columns())
			if err != nil {
				return err
			}
			kpis, err = metrics.EvaluateAll(ds, specs)
			if err != nil {
				return err
			}
		}

		cards := briefing.BuildCards(ds, ds, ds.NumericColumns(), ds.CategoricalColumns())

		var insights []string
		if miss := ds.Missingness(); miss > 0 {
			insights = append(insights, fmt.Sprintf("Warning: %.1f%% of cells are missing values.", miss))
		}
		conf := insight.ScoreConfidence(insight.ConfidenceInput{
			RowsUsed:        ds.Len(),
			TotalRows:       ds.Len(),
			MetricsComputed: len(kpis),
			MissingPct:      ds.Missingness(),
			PlanValid:       true,
		})
		insights = append(insights, conf.Rationale)

		brief := briefing.Build(kpis, cards, insights, briefing.Provenance{
			TotalRows:    ds.Len(),
			FilteredRows: ds.Len(),
			Columns:      len(ds.Columns()),
			Source:       cfg.SourceSystem,
		})

		out := brief.Markdown()
		if briefOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		return os.WriteFile(briefOutput, []byte(out), 0o644)
	},
}

func init() {
	briefCmd.Flags().StringVarP(&briefInput, "input", "i", "", "input CSV file (required)")
	briefCmd.Flags().StringVarP(&briefSpecs, "specs", "s", "", "YAML file of KPI metric definitions")
	briefCmd.Flags().StringVarP(&briefOutput, "output", "o", "", "output Markdown file (default: stdout)")
	_ = briefCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(briefCmd)
}
