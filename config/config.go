package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultRows     = 50
	DefaultColumns  = 26
	DefaultLogLevel = "warn"
)

type Config struct {
	Rows     int    `json:"rows,omitempty"`
	Columns  int    `json:"columns,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{Rows: DefaultRows, Columns: DefaultColumns, LogLevel: DefaultLogLevel}
}

func dir() (string, error) {
	if v := os.Getenv("GRIDCALC_CONFIG_DIR"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "gridcalc"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gridcalc"), nil
}

// Path returns the location of the config file
func Path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.json"), nil
}

// Load reads the config file. Missing fields, or a missing file, fall back
// to Default.
func Load() (Config, error) {
	cfg := Default()
	p, err := Path()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	var stored Config
	if err := json.Unmarshal(data, &stored); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", p, err)
	}
	if stored.Rows > 0 {
		cfg.Rows = stored.Rows
	}
	if stored.Columns > 0 {
		cfg.Columns = stored.Columns
	}
	if stored.LogLevel != "" {
		cfg.LogLevel = stored.LogLevel
	}
	return cfg, nil
}

// Save writes the config to disk atomically using a temp file + rename.
func Save(cfg Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Set updates one setting by its JSON key
func (c *Config) Set(key, value string) error {
	switch key {
	case "rows", "columns":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		if key == "rows" {
			c.Rows = n
		} else {
			c.Columns = n
		}
	case "log_level":
		if _, err := ParseLogLevel(value); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
