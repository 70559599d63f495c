package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riftlab/riftrank/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures the upstream stats page fetch.
type SourceConfig struct {
	URL         string  `yaml:"url" mapstructure:"url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
}

// AnalysisConfig configures the tiering math.
type AnalysisConfig struct {
	TierCount int      `yaml:"tier_count" mapstructure:"tier_count"`
	Brackets  []string `yaml:"brackets" mapstructure:"brackets"`
}

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatBoth = "both"
)

// OutputConfig configures report generation.
type OutputConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Basename string `yaml:"basename" mapstructure:"basename"`
	Format   string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the run snapshot store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RIFTRANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.url", "https://lolm.qq.com/act/a20220818raider/index.html")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.user_agent", "riftrank/1.0")
	v.SetDefault("source.rate_per_sec", 1.0)
	v.SetDefault("source.burst", 1)
	v.SetDefault("analysis.tier_count", 5)
	v.SetDefault("analysis.brackets", []string{"Diamond", "Master", "Challenger", "Legendary"})
	v.SetDefault("output.dir", "res")
	v.SetDefault("output.basename", "riftrank")
	v.SetDefault("output.format", "xlsx")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "riftrank.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for values the pipeline cannot
// run with.
func (c *Config) Validate() error {
	if c.Analysis.TierCount < 2 || c.Analysis.TierCount > model.MaxTierCount {
		return eris.Errorf("config: analysis.tier_count must be in [2,%d], got %d",
			model.MaxTierCount, c.Analysis.TierCount)
	}
	for _, b := range c.Analysis.Brackets {
		if !model.Bracket(b).Valid() {
			return eris.Errorf("config: unknown bracket %q", b)
		}
	}
	switch c.Output.Format {
	case FormatXLSX, FormatCSV, FormatBoth:
	default:
		return eris.Errorf("config: output.format must be xlsx, csv, or both, got %q", c.Output.Format)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: store.driver must be sqlite or postgres, got %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url required for postgres driver")
	}
	return nil
}

// BracketList converts the configured bracket names to model values.
// Call Validate first; unknown names are skipped here.
func (c *Config) BracketList() []model.Bracket {
	out := make([]model.Bracket, 0, len(c.Analysis.Brackets))
	for _, b := range c.Analysis.Brackets {
		if bracket := model.Bracket(b); bracket.Valid() {
			out = append(out, bracket)
		}
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
