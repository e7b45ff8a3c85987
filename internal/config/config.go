// Package config loads tool configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings holds the tunable knobs of the insight core exposed to the CLI.
type Settings struct {
	Contamination float64 `mapstructure:"contamination" yaml:"contamination"`
	Trees         int     `mapstructure:"trees" yaml:"trees"`
	SampleSize    int     `mapstructure:"sample_size" yaml:"sample_size"`
	Seed          int64   `mapstructure:"seed" yaml:"seed"`

	Horizon    int     `mapstructure:"horizon" yaml:"horizon"`
	Confidence float64 `mapstructure:"confidence" yaml:"confidence"`
	Model      string  `mapstructure:"model" yaml:"model"`

	SourceSystem string `mapstructure:"source_system" yaml:"source_system"`
}

// Load reads configuration with precedence: env > config file > defaults.
// An empty cfgFile falls back to ~/.dashlens/config.yaml when present.
func Load(cfgFile string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("DASHLENS")
	v.AutomaticEnv()

	v.SetDefault("contamination", 0.05)
	v.SetDefault("trees", 100)
	v.SetDefault("sample_size", 256)
	v.SetDefault("seed", 42)
	v.SetDefault("horizon", 10)
	v.SetDefault("confidence", 0.95)
	v.SetDefault("model", "linear")
	v.SetDefault("source_system", "csv-upload")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".dashlens", "config.yaml"))
		// Missing default config is fine; defaults apply.
		_ = v.ReadInConfig()
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &s, nil
}

// Save writes the settings to cfgFile, or ~/.dashlens/config.yaml when
// empty, creating the directory if necessary.
func Save(s *Settings, cfgFile string) error {
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".dashlens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
