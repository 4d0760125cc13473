// Package models defines data structures for configuration, fetching and chunking.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkerCount  = 5
	DefaultTimeout      = 30 * time.Second
	DefaultRetries      = 1
	DefaultRetryBackoff = time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultUserAgent    = "llm-doc-chunker/1.0"
)

// FetchConfig holds runtime configuration for fetch operations.
// Values come from an optional YAML file and are overridden by CLI flags.
type FetchConfig struct {
	WorkerCount  int           `yaml:"workers,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	Retries      int           `yaml:"retries,omitempty"`
	RetryBackoff time.Duration `yaml:"retry_backoff,omitempty"`
	// RateLimit caps outbound requests per second across all workers; 0 disables it.
	RateLimit          float64  `yaml:"rate_limit,omitempty"`
	UserAgent          string   `yaml:"user_agent,omitempty"`
	MaxBodyBytes       int64    `yaml:"max_body_bytes,omitempty"`
	StructuredSuffixes []string `yaml:"structured_suffixes,omitempty"`
}

// DefaultFetchConfig returns the stock fetch settings.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		WorkerCount:        DefaultWorkerCount,
		Timeout:            DefaultTimeout,
		Retries:            DefaultRetries,
		RetryBackoff:       DefaultRetryBackoff,
		UserAgent:          DefaultUserAgent,
		MaxBodyBytes:       DefaultMaxBodyBytes,
		StructuredSuffixes: []string{".md"},
	}
}

// Validate rejects settings the orchestrator cannot run with.
func (c FetchConfig) Validate() error {
	var errs []error
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.WorkerCount))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.RetryBackoff < 0 {
		errs = append(errs, fmt.Errorf("retry_backoff must not be negative, got %s", c.RetryBackoff))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative, got %g", c.RateLimit))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes))
	}
	return errors.Join(errs...)
}

// Config is the on-disk configuration file layout.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch"`
	Chunker ChunkerConfig `yaml:"chunker"`
}

// LoadConfig reads a YAML config file on top of the defaults.
// A missing file is not an error; the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Fetch: DefaultFetchConfig()}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
