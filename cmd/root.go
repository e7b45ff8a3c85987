// Package cmd wires the dashlens CLI around the insight core.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/dashlens/dashlens/internal/config"
)

var (
	cfgFile string

	// Loaded configuration, available to all subcommands.
	cfg *cfgpkg.Settings
)

var rootCmd = &cobra.Command{
	Use:   "dashlens",
	Short: "dashlens: anomaly scoring, forecasting and briefs for tabular data",
	Long: `dashlens is the computation core behind a tabular-data dashboard.
It scores rows for anomalousness with an isolation forest, projects
numeric columns forward with confidence bands, and assembles KPI
snapshots into a board brief.`,
}

// Execute is the entry point called by main.main().
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dashlens/config.yaml)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		if c, err = cfgpkg.Load(""); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}
	cfg = c
}
