package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Storage backends for credentials.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds application configuration.
type Config struct {
	PageSize           int      `json:"pageSize"`
	CacheLimit         int      `json:"cacheLimit"`
	SearchDebounceMs   int      `json:"searchDebounceMs"`
	LookupCacheSize    int      `json:"lookupCacheSize"`
	RequestTimeoutSec  int      `json:"requestTimeoutSec"`
	StorageBackend     string   `json:"storageBackend"`
	LogLevel           string   `json:"logLevel"`
	LogFile            string   `json:"logFile"`
	CullConcurrency    int      `json:"cullConcurrency"`
	CullTimeoutSec     int      `json:"cullTimeoutSec"`
	CullExcludeDomains []string `json:"cullExcludeDomains"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:           100,
		CacheLimit:         1000,
		SearchDebounceMs:   100,
		LookupCacheSize:    64,
		RequestTimeoutSec:  15,
		StorageBackend:     BackendSQLite,
		LogLevel:           "info",
		CullConcurrency:    10,
		CullTimeoutSec:     10,
		CullExcludeDomains: []string{"github.com", "gitlab.com"},
	}
}

// SearchDebounce returns the debounce delay as a duration.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

// RequestTimeout returns the HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// CullTimeout returns the per-URL cull timeout as a duration.
func (c *Config) CullTimeout() time.Duration {
	return time.Duration(c.CullTimeoutSec) * time.Second
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills zero-valued fields.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = defaults.PageSize
	}
	if c.CacheLimit <= 0 {
		c.CacheLimit = defaults.CacheLimit
	}
	if c.SearchDebounceMs <= 0 {
		c.SearchDebounceMs = defaults.SearchDebounceMs
	}
	if c.LookupCacheSize <= 0 {
		c.LookupCacheSize = defaults.LookupCacheSize
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = defaults.RequestTimeoutSec
	}
	if c.StorageBackend == "" {
		c.StorageBackend = defaults.StorageBackend
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.CullConcurrency <= 0 {
		c.CullConcurrency = defaults.CullConcurrency
	}
	if c.CullTimeoutSec <= 0 {
		c.CullTimeoutSec = defaults.CullTimeoutSec
	}
	if c.CullExcludeDomains == nil {
		c.CullExcludeDomains = defaults.CullExcludeDomains
	}
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/lnk/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogFilePath returns where the TUI logs: ~/.config/lnk/lnk.log
func DefaultLogFilePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lnk.log"), nil
}
