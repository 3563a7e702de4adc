package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full tracker configuration.
type Config struct {
	Tracker TrackerConfig `yaml:"tracker"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// TrackerConfig controls the refresh loop and the fleet view.
type TrackerConfig struct {
	IntervalSeconds int              `yaml:"interval_seconds"`
	Window          string           `yaml:"window"`  // 1D | 7D | 30D | 3M | 6M | ALL
	SortBy          string           `yaml:"sort_by"` // name | balance | total_pnl | ...
	SortDesc        bool             `yaml:"sort_desc"`
	Kind            string           `yaml:"kind"` // fleet filter: forward_test | live_test | "" for both
	ActiveOnly      bool             `yaml:"active_only"`
	Strategies      []StrategyConfig `yaml:"strategies"`
}

// StrategyConfig is one tracked wallet.
type StrategyConfig struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Kind            string  `yaml:"kind"` // forward_test | live_test
	Wallet          string  `yaml:"wallet"`
	StartingBalance float64 `yaml:"starting_balance"`
	StartDate       string  `yaml:"start_date"` // YYYY-MM-DD
	Active          bool    `yaml:"active"`
}

// APIConfig holds the upstream base URLs. An empty ledger_base disables the
// ledger feed; an empty stream_url disables the live price stream.
type APIConfig struct {
	DataBase   string `yaml:"data_base"`
	GammaBase  string `yaml:"gamma_base"`
	LedgerBase string `yaml:"ledger_base"`
	LedgerKey  string `yaml:"ledger_key"` // normally set via LEDGER_API_KEY
	StreamURL  string `yaml:"stream_url"`
}

// StorageConfig controls where state is persisted.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// LogConfig controls log format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML config file and the .env file if present. Environment
// variables override the corresponding YAML keys.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// RefreshInterval returns the refresh interval as a time.Duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Tracker.IntervalSeconds) * time.Second
}

// applyEnvOverrides overrides values from environment variables when present.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LEDGER_API_KEY"); v != "" {
		cfg.API.LedgerKey = v
	}
	if v := os.Getenv("POLYCOPY_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults ensures required values have sensible defaults.
func setDefaults(cfg *Config) {
	if cfg.Tracker.IntervalSeconds <= 0 {
		cfg.Tracker.IntervalSeconds = 60
	}
	if cfg.Tracker.Window == "" {
		cfg.Tracker.Window = "ALL"
	}
	if cfg.Tracker.SortBy == "" {
		cfg.Tracker.SortBy = "total_pnl"
		cfg.Tracker.SortDesc = true
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.StreamURL == "" {
		cfg.API.StreamURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polycopy.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
