package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dashlens/dashlens/pkg/anomaly"
	"github.com/dashlens/dashlens/pkg/dataset"
	"github.com/dashlens/dashlens/pkg/insight"
	csvio "github.com/dashlens/dashlens/pkg/io/csv"
	"github.com/dashlens/dashlens/pkg/io/jsonw"
)

var (
	detectInput         string
	detectColumns       string
	detectContamination float64
	detectTrees         int
	detectSeed          int64
	detectOutput        string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Score dataset rows for anomalousness",
	Long: `Detect loads a CSV file, builds a standardized feature matrix from the
selected numeric columns, fits an isolation forest, and flags the most
anomalous fraction of rows. The annotated rows are written as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(detectInput)
		if err != nil {
			return err
		}

		columns := splitColumns(detectColumns)
		if len(columns) == 0 {
			columns = ds.NumericColumns()
		}

		// Flags set on the command line override the configured values,
		// even when set to their zero value (e.g. --seed 0).
		contamination := cfg.Contamination
		if cmd.Flags().Changed("contamination") {
			contamination = detectContamination
		}
		trees := cfg.Trees
		if cmd.Flags().Changed("trees") {
			trees = detectTrees
		}
		seed := cfg.Seed
		if cmd.Flags().Changed("seed") {
			seed = detectSeed
		}

		opts := []anomaly.Option{
			anomaly.WithContamination(contamination),
			anomaly.WithTrees(trees),
			anomaly.WithSampleSize(cfg.SampleSize),
			anomaly.WithSeed(seed),
		}
		result, err := anomaly.Detect(ds, columns, opts...)
		if err != nil {
			return err
		}

		bundle, err := insight.Combine(ds, result, nil, "")
		if err != nil {
			return err
		}
		if err := writeBundle(bundle, detectOutput); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Flagged %d of %d rows (threshold %.4f)\n",
			result.Flagged(), ds.Len(), result.Threshold)
		return nil
	},
}

func init() {
	detectCmd.Flags().StringVarP(&detectInput, "input", "i", "", "input CSV file (required)")
	detectCmd.Flags().StringVarP(&detectColumns, "columns", "c", "", "comma-separated numeric columns (default: all numeric)")
	detectCmd.Flags().Float64Var(&detectContamination, "contamination", 0, "expected anomalous fraction in (0, 0.5]")
	detectCmd.Flags().IntVar(&detectTrees, "trees", 0, "isolation forest ensemble size")
	detectCmd.Flags().Int64Var(&detectSeed, "seed", 0, "random seed for reproducible scoring")
	detectCmd.Flags().StringVarP(&detectOutput, "output", "o", "", "output JSON file (default: stdout)")
	_ = detectCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(detectCmd)
}

func loadDataset(path string) (*dataset.Dataset, error) {
	r, err := csvio.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Read()
}

func splitColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func writeBundle(bundle *insight.Bundle, path string) error {
	if path == "" {
		return jsonw.NewWriter(os.Stdout).Write(bundle)
	}
	w, err := jsonw.NewFileWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Write(bundle)
}
