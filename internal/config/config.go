// Package config handles loading the decisionlog config.toml file and
// resolving where the database lives.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/decisionlog/internal/decision"
)

// EnvDatabase overrides the database path from the config file.
const EnvDatabase = "DECISIONLOG_DB"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the config.toml file. Every key is optional.
type Config struct {
	// Database is the SQLite file to use.
	Database string `toml:"database"`

	// DateField selects the column that list's --from/--to compare by default.
	DateField string `toml:"date-field"`

	// Format is the default output format: "text" or "json".
	Format string `toml:"format"`

	// Color controls status colouring in tables: "auto", "always" or "never".
	Color string `toml:"color"`
}

// Load reads the config file at path. An empty path means DefaultPath.
// Returns an empty config if the file does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("parse config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Database = strings.TrimSpace(cfg.Database)
	cfg.DateField = strings.TrimSpace(cfg.DateField)
	cfg.Format = strings.TrimSpace(cfg.Format)
	cfg.Color = strings.TrimSpace(cfg.Color)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the enumerated keys. Empty values are allowed.
func (c *Config) Validate() error {
	var errs []error

	if _, err := decision.ParseDateField(c.DateField); err != nil {
		errs = append(errs, fmt.Errorf("date-field: %w", err))
	}

	switch c.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("format: unknown format %q (expected text or json)", c.Format))
	}

	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("color: unknown mode %q (expected auto, always or never)", c.Color))
	}

	return errors.Join(errs...)
}

// DefaultPath returns $XDG_CONFIG_HOME/decisionlog/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "decisionlog", "config.toml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "decisionlog", "config.toml"), nil
}

// DefaultDatabasePath returns the default filesystem location for the database.
func DefaultDatabasePath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "decisionlog", "decision_log.db"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "decisionlog", "decision_log.db"), nil
}

// ResolveDatabase picks the database path: flag, then DECISIONLOG_DB, then
// the config file, then DefaultDatabasePath.
func ResolveDatabase(flag string, cfg *Config) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if p := os.Getenv(EnvDatabase); p != "" {
		return p, nil
	}
	if cfg != nil && cfg.Database != "" {
		return expandHome(cfg.Database)
	}
	return DefaultDatabasePath()
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
