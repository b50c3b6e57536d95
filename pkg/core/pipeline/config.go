package pipeline

import (
	"fmt"
	"os"
	"time"

	hjson "github.com/hjson/hjson-go/v4"
)

// Config bounds one pipeline instance. Every document run is independent and
// shares only the read-only dictionary; Workers caps how many documents are
// ingested concurrently.
type Config struct {
	DefaultCurrency  string  `json:"default_currency"`
	MaxRows          int     `json:"max_rows"`
	MaxCols          int     `json:"max_cols"`
	BalanceTolerance float64 `json:"balance_tolerance"`
	MaxAbsAmount     float64 `json:"max_abs_amount"`
	Workers          int     `json:"workers"`
	// StoreTimeoutSeconds bounds each persistence call; a run that cannot
	// reach the store fails instead of hanging.
	StoreTimeoutSeconds int `json:"store_timeout_seconds"`
}

// DefaultConfig matches the reference system: 10s store timeout, 4 workers,
// 1 unit of balance slack.
func DefaultConfig() Config {
	return Config{
		DefaultCurrency:     "EUR",
		MaxRows:             5000,
		MaxCols:             64,
		BalanceTolerance:    1.0,
		MaxAbsAmount:        1e12,
		Workers:             4,
		StoreTimeoutSeconds: 10,
	}
}

// StoreTimeout returns the configured timeout as a duration.
func (c Config) StoreTimeout() time.Duration {
	if c.StoreTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

// LoadConfig reads an HJSON config file over the defaults. HJSON tolerates
// comments and trailing commas, so the file stays hand-editable.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading pipeline config: %w", err)
	}
	if err := hjson.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing pipeline config: %w", err)
	}
	return cfg, nil
}
