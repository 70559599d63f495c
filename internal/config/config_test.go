package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://lolm.qq.com/act/a20220818raider/index.html", cfg.Source.URL)
	assert.Equal(t, 30, cfg.Source.TimeoutSecs)
	assert.InDelta(t, 1.0, cfg.Source.RatePerSec, 0.001)
	assert.Equal(t, 1, cfg.Source.Burst)
	assert.Equal(t, 5, cfg.Analysis.TierCount)
	assert.Equal(t, []string{"Diamond", "Master", "Challenger", "Legendary"}, cfg.Analysis.Brackets)
	assert.Equal(t, "res", cfg.Output.Dir)
	assert.Equal(t, "riftrank", cfg.Output.Basename)
	assert.Equal(t, "xlsx", cfg.Output.Format)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "riftrank.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
analysis:
  tier_count: 3
  brackets: [Diamond, Legendary]
output:
  format: both
store:
  driver: sqlite
  path: /tmp/test.db
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Analysis.TierCount)
	assert.Equal(t, []string{"Diamond", "Legendary"}, cfg.Analysis.Brackets)
	assert.Equal(t, "both", cfg.Output.Format)
	assert.Equal(t, "/tmp/test.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Analysis: AnalysisConfig{TierCount: 5, Brackets: []string{"Diamond"}},
			Output:   OutputConfig{Format: "csv"},
			Store:    StoreConfig{Driver: "sqlite", Path: "x.db"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"tier count too low", func(c *Config) { c.Analysis.TierCount = 1 }, "tier_count"},
		{"tier count too high", func(c *Config) { c.Analysis.TierCount = 9 }, "tier_count"},
		{"unknown bracket", func(c *Config) { c.Analysis.Brackets = []string{"Wood"} }, "bracket"},
		{"unknown format", func(c *Config) { c.Output.Format = "pdf" }, "output.format"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "oracle" }, "store.driver"},
		{"postgres without url", func(c *Config) { c.Store.Driver = "postgres"; c.Store.DatabaseURL = "" }, "database_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBracketList(t *testing.T) {
	cfg := &Config{Analysis: AnalysisConfig{Brackets: []string{"Diamond", "Challenger"}}}
	brackets := cfg.BracketList()
	require.Len(t, brackets, 2)
	assert.Equal(t, "Diamond", string(brackets[0]))
	assert.Equal(t, "Challenger", string(brackets[1]))
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouty", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
