package config

import (
	"fmt"
	"time"

	"github.com/muurk/ssdpscan/internal/description"
	"github.com/muurk/ssdpscan/internal/discovery"
	"github.com/muurk/ssdpscan/internal/logging"
	"github.com/muurk/ssdpscan/internal/ssdp"
)

// CurrentVersion is the only configuration schema version understood
const CurrentVersion = 1

// MaxWorkers bounds search.workers
const MaxWorkers = 64

// Config represents the entire user configuration file.
type Config struct {
	Version  int          `yaml:"version"`
	LogLevel string       `yaml:"log_level,omitempty"` // debug, info, warn or error; empty is silent
	Search   *SearchPrefs `yaml:"search,omitempty"`
	HTTP     *HTTPPrefs   `yaml:"http,omitempty"`
}

// SearchPrefs represents defaults for every search.
type SearchPrefs struct {
	Target         string   `yaml:"target"`               // Search target for `ssdpscan search` without arguments
	TimeoutSeconds int      `yaml:"timeout_seconds"`      // Listen time per adapter (minimum 2)
	MX             uint     `yaml:"mx"`                   // Advertised maximum reply delay in seconds
	Interfaces     []string `yaml:"interfaces,omitempty"` // Restrict searches to these adapters
	Workers        int      `yaml:"workers"`              // Concurrent description resolvers
	StrictParse    bool     `yaml:"strict_parse"`         // Log non-matching descriptions as parse errors
}

// HTTPPrefs represents settings for description fetches.
type HTTPPrefs struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent,omitempty"` // Default: ssdpscan/<version>
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Search:  defaultSearchPrefs(),
		HTTP:    defaultHTTPPrefs(),
	}
}

func defaultSearchPrefs() *SearchPrefs {
	return &SearchPrefs{
		Target:         ssdp.SearchAll,
		TimeoutSeconds: int(discovery.DefaultTimeout / time.Second),
		MX:             ssdp.DefaultMX,
		Workers:        discovery.DefaultWorkers,
	}
}

func defaultHTTPPrefs() *HTTPPrefs {
	return &HTTPPrefs{
		TimeoutSeconds: int(description.DefaultFetchTimeout / time.Second),
	}
}

// fillDefaults ensures optional sections are present
func (c *Config) fillDefaults() {
	if c.Search == nil {
		c.Search = defaultSearchPrefs()
	}
	if c.HTTP == nil {
		c.HTTP = defaultHTTPPrefs()
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}

	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}

	if s := c.Search; s != nil {
		if s.TimeoutSeconds < 0 {
			return fmt.Errorf("search.timeout_seconds must not be negative (got %d)", s.TimeoutSeconds)
		}
		if s.TimeoutSeconds > 0 && time.Duration(s.TimeoutSeconds)*time.Second < discovery.MinTimeout {
			return fmt.Errorf("search.timeout_seconds must be at least %d (got %d)",
				int(discovery.MinTimeout/time.Second), s.TimeoutSeconds)
		}
		if s.MX > 5 {
			return fmt.Errorf("search.mx must be between 1 and 5 (got %d)", s.MX)
		}
		if s.Workers < 0 || s.Workers > MaxWorkers {
			return fmt.Errorf("search.workers must be between 1 and %d (got %d)", MaxWorkers, s.Workers)
		}
		for _, name := range s.Interfaces {
			if name == "" {
				return fmt.Errorf("search.interfaces contains an empty name")
			}
		}
	}

	if h := c.HTTP; h != nil && h.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds must not be negative (got %d)", h.TimeoutSeconds)
	}

	return nil
}

// SearchTimeout returns the configured listen time (0 selects the default)
func (c *Config) SearchTimeout() time.Duration {
	if c.Search == nil {
		return 0
	}
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// SearchRequest maps the search section onto a discovery.Request.
// An empty st falls back to search.target.
func (c *Config) SearchRequest(st string) discovery.Request {
	c.fillDefaults()
	if st == "" {
		st = c.Search.Target
	}
	return discovery.Request{
		ST:             st,
		Timeout:        c.SearchTimeout(),
		MX:             c.Search.MX,
		InterfaceNames: append([]string(nil), c.Search.Interfaces...),
	}
}

// NewFetcher builds the description fetcher described by the http section
func (c *Config) NewFetcher() *description.HTTPFetcher {
	c.fillDefaults()
	fetcher := description.NewHTTPFetcher(time.Duration(c.HTTP.TimeoutSeconds) * time.Second)
	if c.HTTP.UserAgent != "" {
		fetcher.UserAgent = c.HTTP.UserAgent
	}
	return fetcher
}

// ToDiscoveryConfig builds the Coordinator configuration. Transport and
// adapter enumeration are left to their system defaults.
func (c *Config) ToDiscoveryConfig() discovery.Config {
	c.fillDefaults()
	return discovery.Config{
		Fetcher:     c.NewFetcher(),
		Workers:     c.Search.Workers,
		StrictParse: c.Search.StrictParse,
	}
}
