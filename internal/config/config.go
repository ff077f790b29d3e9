// Package config loads companyfinder settings from YAML, JSON, or TOML files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/companyfinder/pkg/linkedin"
	"github.com/codeGROOVE-dev/companyfinder/pkg/search"
)

// DefaultPath is where settings are looked up when no path is given.
const DefaultPath = "config/settings.yaml"

// Config holds the companyfinder configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search" toml:"search"`
	Selection SelectionConfig `yaml:"selection" toml:"selection"`
	Cache     CacheConfig     `yaml:"cache" toml:"cache"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// SearchConfig holds search engine settings.
type SearchConfig struct {
	Engine          string `yaml:"engine" toml:"engine"` // duckduckgo (default), brave
	BaseURL         string `yaml:"base_url" toml:"base_url"`
	UserAgent       string `yaml:"user_agent" toml:"user_agent"`
	APIKey          string `yaml:"api_key" toml:"api_key"`
	QueryTemplate   string `yaml:"query_template" toml:"query_template"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
	MaxWorkers      int    `yaml:"max_workers" toml:"max_workers"`
	ResultsPerQuery int    `yaml:"results_per_query" toml:"results_per_query"`
}

// SelectionConfig controls how a company page is chosen.
type SelectionConfig struct {
	NormalizeURLs *bool   `yaml:"normalize_urls" toml:"normalize_urls"`
	Strategy      string  `yaml:"strategy" toml:"strategy"` // best (default), first
	MinConfidence float64 `yaml:"min_confidence" toml:"min_confidence"`
}

// CacheConfig holds HTTP cache settings.
type CacheConfig struct {
	Enabled  *bool  `yaml:"enabled" toml:"enabled"`
	Dir      string `yaml:"dir" toml:"dir"` // empty: user cache dir
	TTLHours int    `yaml:"ttl_hours" toml:"ttl_hours"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir     string   `yaml:"dir" toml:"dir"`
	Formats []string `yaml:"formats" toml:"formats"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn, error
}

// Default returns a Config with every default applied.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// Load reads the settings file at path. A .env file in the working directory,
// if present, is loaded first so ${VAR} references can use it.
func Load(path string) (Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default: // .yaml, .yml, and .json, which YAML accepts
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default with a warning.
func LoadOrDefault(path string, logger *slog.Logger) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("settings file not found, using default settings", "path", path)
		return Default(), nil
	}
	return cfg, err
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Search.Engine == "" {
		c.Search.Engine = string(search.DefaultEngine)
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = search.DefaultDuckDuckGoURL
		if strings.EqualFold(c.Search.Engine, string(search.Brave)) {
			c.Search.BaseURL = search.DefaultBraveURL
		}
	}
	if c.Search.QueryTemplate == "" {
		c.Search.QueryTemplate = search.DefaultQueryTemplate
	}
	if c.Search.TimeoutSeconds <= 0 {
		c.Search.TimeoutSeconds = 10
	}
	if c.Search.MaxWorkers <= 0 {
		c.Search.MaxWorkers = 8
	}
	if c.Search.ResultsPerQuery <= 0 {
		c.Search.ResultsPerQuery = 10
	}
	if c.Selection.Strategy == "" {
		c.Selection.Strategy = string(linkedin.StrategyBest)
	}
	if c.Selection.NormalizeURLs == nil {
		c.Selection.NormalizeURLs = ptr(true)
	}
	if c.Selection.MinConfidence <= 0 {
		c.Selection.MinConfidence = 0.6
	}
	if c.Cache.Enabled == nil {
		c.Cache.Enabled = ptr(true)
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 72
	}
	if c.Output.Dir == "" {
		c.Output.Dir = filepath.Join("data", "outputs")
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{"json", "csv"}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if _, err := search.ParseEngine(c.Search.Engine); err != nil {
		return fmt.Errorf("search.engine: %w", err)
	}
	if c.Search.MaxWorkers < 1 {
		return fmt.Errorf("search.max_workers must be at least 1, got %d", c.Search.MaxWorkers)
	}
	if c.Search.TimeoutSeconds < 1 {
		return fmt.Errorf("search.timeout_seconds must be at least 1, got %d", c.Search.TimeoutSeconds)
	}
	switch linkedin.Strategy(c.Selection.Strategy) {
	case linkedin.StrategyBest, linkedin.StrategyFirst:
	default:
		return fmt.Errorf("selection.strategy must be %q or %q, got %q",
			linkedin.StrategyBest, linkedin.StrategyFirst, c.Selection.Strategy)
	}
	if c.Selection.MinConfidence > 1 {
		return fmt.Errorf("selection.min_confidence must be at most 1, got %v", c.Selection.MinConfidence)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Timeout returns the search timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// CacheEnabled reports whether HTTP responses are cached.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// NormalizeURLs reports whether selected URLs are canonicalized.
func (c *Config) NormalizeURLs() bool {
	return c.Selection.NormalizeURLs == nil || *c.Selection.NormalizeURLs
}

// ParseLevel maps a level name to a slog.Level. "warning" is accepted for warn.
func ParseLevel(s string) (slog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", s)
	}
	return l, nil
}

func ptr[T any](v T) *T { return &v }

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
