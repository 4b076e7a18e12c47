package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Duration is a time.Duration read from YAML as "30s", "5m" and so on.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// CacheConfig selects the page cache.
type CacheConfig struct {
	Type     string   `yaml:"type"`
	TTL      Duration `yaml:"ttl"`
	RedisURL string   `yaml:"redis_url,omitempty"`
}

// Config holds all settings.
type Config struct {
	RaceURL       string      `yaml:"race_url"`
	NewDragonsURL string      `yaml:"new_dragons_url"`
	AllDragonsURL string      `yaml:"all_dragons_url"`
	UserAgent     string      `yaml:"user_agent"`
	Timeout       Duration    `yaml:"timeout"`
	UnitTimeout   Duration    `yaml:"unit_timeout"`
	Concurrency   int         `yaml:"concurrency"`
	Retries       int         `yaml:"retries"`
	LogLevel      string      `yaml:"log_level"`
	DataDir       string      `yaml:"data_dir,omitempty"`
	Cache         CacheConfig `yaml:"cache"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		RaceURL:       "https://deetlist.com/dragoncity/events/race/",
		NewDragonsURL: "https://deetlist.com/dragoncity/new-dragons/",
		AllDragonsURL: "https://deetlist.com/dragoncity/all-dragons/",
		UserAgent:     "deetlist-cli/1.0 (github.com/pfrederiksen/deetlist)",
		Timeout:       Duration(30 * time.Second),
		UnitTimeout:   Duration(2 * time.Minute),
		Concurrency:   4,
		Retries:       3,
		LogLevel:      "info",
		Cache: CacheConfig{
			Type: CacheMemory,
			TTL:  Duration(10 * time.Minute),
		},
	}
}

// DefaultPath returns ~/.deets/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".deets", "config.yaml"), nil
}

// Load reads the config file at path over the defaults. An empty path means
// DefaultPath. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	for name, u := range map[string]string{
		"race_url":        c.RaceURL,
		"new_dragons_url": c.NewDragonsURL,
		"all_dragons_url": c.AllDragonsURL,
	} {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, u)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UnitTimeout <= 0 {
		return fmt.Errorf("unit_timeout must be positive")
	}
	switch c.Cache.Type {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache type %q", c.Cache.Type)
	}
	return nil
}
