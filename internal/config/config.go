// Package config handles project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matsen/infostats/internal/enrich"
)

// Config is the project configuration, read from infostats.yml.
type Config struct {
	BibtexPath     string       `yaml:"bibtex_path"`     // BibTeX export to parse
	RecordsPath    string       `yaml:"records_path"`    // JSONL file of parsed/enriched records
	DBPath         string       `yaml:"db_path"`         // SQLite database
	BlockSize      int          `yaml:"block_size"`      // Entries per parse block, 0 = all at once
	DeletePrevious bool         `yaml:"delete_previous"` // Remove records_path before parsing
	ReportPath     string       `yaml:"report_path"`     // Semicolon-delimited statistics report
	YearWindow     int          `yaml:"year_window"`     // Most recent years considered by rankings
	Limits         Limits       `yaml:"limits"`
	Enrich         EnrichConfig `yaml:"enrich"`
}

// Limits caps the length of each ranking in the report.
type Limits struct {
	Threshold      int `yaml:"threshold"`
	MostPublishing int `yaml:"most_publishing"`
	CountryStats   int `yaml:"country_stats"`
	Keywords       int `yaml:"keywords"`
}

// EnrichConfig controls fetching of article and venue pages.
type EnrichConfig struct {
	Concurrency int           `yaml:"concurrency"` // Pages fetched in parallel
	RateLimit   float64       `yaml:"rate_limit"`  // Requests per second
	Timeout     time.Duration `yaml:"timeout"`     // Per-request timeout
	ArticleURL  string        `yaml:"article_url"` // Format string taking the record ID
	VenueURL    string        `yaml:"venue_url"`   // Format string taking the venue ID
	UserAgent   string        `yaml:"user_agent"`  // User-Agent header sent to the publisher
	CacheSize   int           `yaml:"cache_size"`  // Venue metric cache entries
}

const (
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile = "infostats.yml"

	// Environment overrides, also read from .env.
	EnvConfig  = "INFOSTATS_CONFIG"
	EnvDB      = "INFOSTATS_DB"
	EnvRecords = "INFOSTATS_RECORDS"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		BibtexPath:  "references.bib",
		RecordsPath: "records.jsonl",
		DBPath:      "records.db",
		ReportPath:  "statistics.csv",
		YearWindow:  3,
		Limits: Limits{
			Threshold:      20,
			MostPublishing: 10,
			CountryStats:   10,
			Keywords:       100,
		},
		Enrich: EnrichConfig{
			Concurrency: enrich.DefaultConcurrency,
			RateLimit:   enrich.DefaultRateLimit,
			Timeout:     enrich.DefaultTimeout,
			ArticleURL:  enrich.DefaultArticleURL,
			VenueURL:    enrich.DefaultVenueURL,
			UserAgent:   enrich.DefaultUserAgent,
			CacheSize:   enrich.DefaultCacheSize,
		},
	}
}

// Load reads configuration from path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ApplyEnv overrides paths from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = ExpandPath(v)
	}
	if v := os.Getenv(EnvRecords); v != "" {
		c.RecordsPath = ExpandPath(v)
	}
}

// Validate rejects negative sizes and an unusable enrichment setup.
func (c *Config) Validate() error {
	switch {
	case c.BlockSize < 0:
		return fmt.Errorf("%w: block_size must not be negative", ErrInvalidConfig)
	case c.YearWindow < 0:
		return fmt.Errorf("%w: year_window must not be negative", ErrInvalidConfig)
	case c.Limits.Threshold < 0, c.Limits.MostPublishing < 0,
		c.Limits.CountryStats < 0, c.Limits.Keywords < 0:
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	case c.Enrich.Concurrency < 1:
		return fmt.Errorf("%w: enrich.concurrency must be at least 1", ErrInvalidConfig)
	case c.Enrich.RateLimit <= 0:
		return fmt.Errorf("%w: enrich.rate_limit must be positive", ErrInvalidConfig)
	case c.Enrich.CacheSize < 1:
		return fmt.Errorf("%w: enrich.cache_size must be at least 1", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) expandPaths() {
	c.BibtexPath = ExpandPath(c.BibtexPath)
	c.RecordsPath = ExpandPath(c.RecordsPath)
	c.DBPath = ExpandPath(c.DBPath)
	c.ReportPath = ExpandPath(c.ReportPath)
}
