package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/alexanderramin/disburse/internal/domain"
)

// Config holds all disburse configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Currency CurrencyConfig `toml:"currency"`
	Log      LogConfig      `toml:"log"`
	Backend  BackendConfig  `toml:"backend"`
}

// GeneralConfig holds workspace preferences.
type GeneralConfig struct {
	DBPath string `toml:"db_path,omitempty"`
	Lang   string `toml:"lang"`
}

// CurrencyConfig controls how amounts are parsed and shown.
type CurrencyConfig struct {
	Code        string `toml:"code"`
	MinorDigits int32  `toml:"minor_digits"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	Format  string `toml:"format"`
}

// BackendConfig points at the platform API that accepts submitted plans.
type BackendConfig struct {
	BaseURL    string `toml:"base_url,omitempty"`
	Token      string `toml:"token,omitempty"`
	TimeoutMs  int    `toml:"timeout_ms"`
	MaxRetries int    `toml:"max_retries"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Lang: "en",
		},
		Currency: CurrencyConfig{
			Code:        domain.CurrencyVND.Code,
			MinorDigits: domain.CurrencyVND.MinorDigits,
		},
		Log: LogConfig{
			Enabled: false,
			Level:   "info",
			Format:  "console",
		},
		Backend: BackendConfig{
			TimeoutMs:  10000,
			MaxRetries: 2,
		},
	}
}

// CurrencyInfo returns the configured currency as a domain value.
func (c Config) CurrencyInfo() domain.Currency {
	return domain.Currency{Code: c.Currency.Code, MinorDigits: c.Currency.MinorDigits}
}

// ResolveDBPath returns the configured database path, or ~/.disburse/disburse.db.
func (c Config) ResolveDBPath() (string, error) {
	if c.General.DBPath != "" {
		return c.General.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".disburse", "disburse.db"), nil
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "disburse")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "disburse")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at Path, then applies environment overrides.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't
// exist, then applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DISBURSE_DB"); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv("DISBURSE_LANG"); v != "" {
		cfg.General.Lang = v
	}
	if v := os.Getenv("DISBURSE_LOG"); v != "" {
		cfg.Log.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("DISBURSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DISBURSE_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("DISBURSE_BACKEND_TOKEN"); v != "" {
		cfg.Backend.Token = v
	}
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"console": true, "json": true}
)

// Validate rejects settings the rest of the program cannot act on.
func (c Config) Validate() error {
	var problems []string
	if !validLevels[strings.ToLower(c.Log.Level)] {
		problems = append(problems, fmt.Sprintf("log.level: invalid value %q", c.Log.Level))
	}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		problems = append(problems, fmt.Sprintf("log.format: invalid value %q", c.Log.Format))
	}
	if c.Currency.Code == "" {
		problems = append(problems, "currency.code is required")
	}
	if c.Currency.MinorDigits < 0 || c.Currency.MinorDigits > 4 {
		problems = append(problems, fmt.Sprintf("currency.minor_digits must be between 0 and 4, got %d", c.Currency.MinorDigits))
	}
	if c.Backend.TimeoutMs <= 0 {
		problems = append(problems, "backend.timeout_ms must be positive")
	}
	if c.Backend.MaxRetries < 0 {
		problems = append(problems, "backend.max_retries must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
