// Package config loads and stores the cpgrab configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the on-disk configuration. Missing keys keep their defaults, so
// old config files stay valid as new keys appear.
type Config struct {
	// CookieCacheEnabled false makes every authenticated fetch re-extract
	// cookies from the browser.
	CookieCacheEnabled bool `json:"cookie_cache_enabled"`
	// CookieCacheMaxAgeHours is the cookie cache TTL. -1 means entries
	// never expire on their own.
	CookieCacheMaxAgeHours int `json:"cookie_cache_max_age_hours"`
	// PreferredBrowser is probed first for cookies. Empty lets the probe
	// order start from the desktop default.
	PreferredBrowser string `json:"preferred_browser,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		CookieCacheEnabled:     true,
		CookieCacheMaxAgeHours: 24,
	}
}

// Path returns the config file location, ~/.config/cpgrab/config.json on Linux.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, "cpgrab", "config.json"), nil
}

// Load reads the default config file. Missing or malformed files yield
// defaults; configuration problems never block a fetch.
func Load() Config {
	path, err := Path()
	if err != nil {
		return Default()
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file, merging user values over defaults.
func LoadFrom(path string) Config {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Debug("config file unreadable, using defaults",
			slog.String("path", path), slog.Any("error", err))
		return Default()
	}
	return cfg
}

// Save writes cfg to the default config file, creating the directory.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{"cookie_cache_enabled", "cookie_cache_max_age_hours", "preferred_browser"}
}

// Value returns the string form of one key.
func (c Config) Value(key string) (string, bool) {
	switch key {
	case "cookie_cache_enabled":
		return strconv.FormatBool(c.CookieCacheEnabled), true
	case "cookie_cache_max_age_hours":
		return strconv.Itoa(c.CookieCacheMaxAgeHours), true
	case "preferred_browser":
		return c.PreferredBrowser, true
	}
	return "", false
}

// Set parses and assigns one key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "cookie_cache_enabled":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: want true or false, got %q", key, value)
		}
		c.CookieCacheEnabled = v
	case "cookie_cache_max_age_hours":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: want an integer (-1 disables expiry), got %q", key, value)
		}
		c.CookieCacheMaxAgeHours = v
	case "preferred_browser":
		c.PreferredBrowser = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
