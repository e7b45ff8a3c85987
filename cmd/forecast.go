package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dashlens/dashlens/pkg/forecast"
	"github.com/dashlens/dashlens/pkg/insight"
)

var (
	forecastInput      string
	forecastColumn     string
	forecastHorizon    int
	forecastConfidence float64
	forecastModel      string
	forecastOutput     string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project a numeric column forward with confidence bands",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(forecastInput)
		if err != nil {
			return err
		}
		series, err := ds.Series(forecastColumn)
		if err != nil {
			return err
		}

		confidence := cfg.Confidence
		if cmd.Flags().Changed("confidence") {
			confidence = forecastConfidence
		}
		opts := []forecast.Option{
			forecast.WithConfidence(confidence),
		}
		model := cfg.Model
		if cmd.Flags().Changed("model") {
			model = forecastModel
		}
		switch model {
		case "", "linear":
			// Default model.
		case "damped_trend":
			opts = append(opts, forecast.WithModel(forecast.NewDampedTrend()))
		default:
			return fmt.Errorf("unknown forecast model %q (want linear or damped_trend)", model)
		}

		horizon := cfg.Horizon
		if cmd.Flags().Changed("horizon") {
			horizon = forecastHorizon
		}
		result, err := forecast.Forecast(series, horizon, opts...)
		if err != nil {
			return err
		}

		bundle, err := insight.Combine(ds, nil, result, forecastColumn)
		if err != nil {
			return err
		}
		if err := writeBundle(bundle, forecastOutput); err != nil {
			return err
		}

		last := result.Points[len(result.Points)-1]
		fmt.Fprintf(cmd.ErrOrStderr(), "Projected %d steps with %s model; step %d: %.4f [%.4f, %.4f]\n",
			horizon, result.Model, last.Step, last.Point, last.Lower, last.Upper)
		return nil
	},
}

func init() {
	forecastCmd.Flags().StringVarP(&forecastInput, "input", "i", "", "input CSV file (required)")
	forecastCmd.Flags().StringVarP(&forecastColumn, "column", "c", "", "numeric column to forecast (required)")
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 0, "number of future steps")
	forecastCmd.Flags().Float64Var(&forecastConfidence, "confidence", 0, "confidence level in (0, 1)")
	forecastCmd.Flags().StringVar(&forecastModel, "model", "", "trend model: linear or damped_trend")
	forecastCmd.Flags().StringVarP(&forecastOutput, "output", "o", "", "output JSON file (default: stdout)")
	_ = forecastCmd.MarkFlagRequired("input")
	_ = forecastCmd.MarkFlagRequired("column")
	rootCmd.AddCommand(forecastCmd)
}
