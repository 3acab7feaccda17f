package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Duration is a time.Duration that reads and writes JSON as a Go duration
// string such as "500ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Plain numbers are nanoseconds, as encoding/json writes time.Duration.
		var ns int64
		if numErr := json.Unmarshal(data, &ns); numErr != nil {
			return errors.Wrapf(err, "[Duration.UnmarshalJSON] invalid duration: %s", data)
		}
		*d = Duration(ns)
		return nil
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "[Duration.UnmarshalJSON] invalid duration: %+v", s)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the configuration for the simulation
type Config struct {
	Rows              int      `json:"rows"`
	Cols              int      `json:"cols"`
	Density           float64  `json:"density"`
	TickInterval      Duration `json:"tick_interval"`
	Seed              int64    `json:"seed"`
	Workers           int      `json:"workers"`
	AutoStart         bool     `json:"auto_start"`
	Render            bool     `json:"render"`
	MaxGenerations    uint64   `json:"max_generations"`
	ListenAddr        string   `json:"listen_addr"`
	PatternServiceURL string   `json:"pattern_service_url"`
	LogLevel          string   `json:"log_level"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:         50,
		Cols:         50,
		Density:      0.25,
		TickInterval: Duration(500 * time.Millisecond),
		AutoStart:    true,
		Render:       true,
		ListenAddr:   "",
		LogLevel:     "info",
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] invalid configuration in file: %+v", filename)
	}

	return config, nil
}

// Validate rejects configurations the engine or scheduler cannot run
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return errors.Errorf("grid must be at least 1x1, got %dx%d", c.Rows, c.Cols)
	}
	if !(c.Density >= 0 && c.Density <= 1) {
		return errors.Errorf("density must be within [0,1], got %v", c.Density)
	}
	if c.TickInterval <= 0 {
		return errors.Errorf("tick_interval must be positive, got %v", time.Duration(c.TickInterval))
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
