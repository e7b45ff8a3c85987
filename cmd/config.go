package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/dashlens/dashlens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dashlens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "contamination: %.3f\n", cfg.Contamination)
		fmt.Fprintf(out, "trees: %d\n", cfg.Trees)
		fmt.Fprintf(out, "sample_size: %d\n", cfg.SampleSize)
		fmt.Fprintf(out, "seed: %d\n", cfg.Seed)
		fmt.Fprintf(out, "horizon: %d\n", cfg.Horizon)
		fmt.Fprintf(out, "confidence: %.3f\n", cfg.Confidence)
		fmt.Fprintf(out, "model: %s\n", cfg.Model)
		fmt.Fprintf(out, "source_system: %s\n", cfg.SourceSystem)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(s *cfgpkg.Settings, key, val string) error {
	switch key {
	case "contamination":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f > 0.5 {
			return fmt.Errorf("invalid contamination: %s (want a fraction in (0, 0.5])", val)
		}
		s.Contamination = f
	case "trees":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for trees: %s", val)
		}
		s.Trees = i
	case "sample_size":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for sample_size: %s", val)
		}
		s.SampleSize = i
	case "seed":
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for seed: %s", val)
		}
		s.Seed = i
	case "horizon":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for horizon: %s", val)
		}
		s.Horizon = i
	case "confidence":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f >= 1 {
			return fmt.Errorf("invalid confidence: %s (want a level in (0, 1))", val)
		}
		s.Confidence = f
	case "model":
		switch val {
		case "linear", "damped_trend":
			s.Model = val
		default:
			return fmt.Errorf("invalid model: %s (use linear or damped_trend)", val)
		}
	case "source_system":
		s.SourceSystem = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
