package cmd

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/dashlens/dashlens/internal/config"
)

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		val     string
		wantErr bool
		check   func(t *testing.T, s *cfgpkg.Settings)
	}{
		{
			name: "contamination", key: "contamination", val: "0.2",
			check: func(t *testing.T, s *cfgpkg.Settings) { assert.Equal(t, 0.2, s.Contamination) },
		},
		{name: "contamination above half", key: "contamination", val: "0.8", wantErr: true},
		{
			name: "trees", key: "trees", val: "64",
			check: func(t *testing.T, s *cfgpkg.Settings) { assert.Equal(t, 64, s.Trees) },
		},
		{name: "negative trees", key: "trees", val: "-1", wantErr: true},
		{
			name: "seed", key: "seed", val: "7",
			check: func(t *testing.T, s *cfgpkg.Settings) { assert.Equal(t, int64(7), s.Seed) },
		},
		{
			name: "confidence", key: "confidence", val: "0.9",
			check: func(t *testing.T, s *cfgpkg.Settings) { assert.Equal(t, 0.9, s.Confidence) },
		},
		{name: "confidence above one", key: "confidence", val: "1.5", wantErr: true},
		{
			name: "model", key: "model", val: "damped_trend",
			check: func(t *testing.T, s *cfgpkg.Settings) { assert.Equal(t, "damped_trend", s.Model) },
		},
		{name: "unknown model", key: "model", val: "cubic", wantErr: true},
		{
			name: "source system", key: "source_system", val: "warehouse",
			check: func(t *testing.T, s *cfgpkg.Settings) { assert.Equal(t, "warehouse", s.SourceSystem) },
		},
		{name: "unknown key", key: "nope", val: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			err := setConfigValue(s, tt.key, tt.val)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestConfigSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	oldCfg, oldFile := cfg, cfgFile
	t.Cleanup(func() { cfg, cfgFile = oldCfg, oldFile })
	cfg = testSettings()
	cfgFile = path

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"config", "set", "trees", "64"})
	require.NoError(t, rootCmd.Execute())

	loaded, err := cfgpkg.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, loaded.Trees)
	assert.Equal(t, cfg.Seed, loaded.Seed)
}
