package common

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-doc-chunker/models"
)

// Exit codes shared by all commands.
const (
	ExitOK      = 0
	ExitPartial = 1
	ExitFailed  = 2
)

// NewLogger builds the JSON stderr logger every action uses.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	} else if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config and overlays any fetch or chunker flags the user set.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("workers") {
		cfg.Fetch.WorkerCount = c.Int("workers")
	}
	if c.IsSet("timeout") {
		cfg.Fetch.Timeout = c.Duration("timeout")
	}
	if c.IsSet("retries") {
		cfg.Fetch.Retries = c.Int("retries")
	}
	if c.IsSet("retry-backoff") {
		cfg.Fetch.RetryBackoff = c.Duration("retry-backoff")
	}
	if c.IsSet("rate-limit") {
		cfg.Fetch.RateLimit = c.Float64("rate-limit")
	}
	if c.IsSet("user-agent") {
		cfg.Fetch.UserAgent = c.String("user-agent")
	}
	if c.IsSet("target-tokens") {
		cfg.Chunker.TargetTokens = c.Int("target-tokens")
	}
	if c.IsSet("max-tokens") {
		cfg.Chunker.MaxTokens = c.Int("max-tokens")
	}
	if c.IsSet("min-tokens") {
		cfg.Chunker.MinTokens = c.Int("min-tokens")
	}

	if err := cfg.Fetch.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fetch config: %w", err)
	}
	if err := cfg.Chunker.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunker config: %w", err)
	}
	return cfg, nil
}

// ExitCode maps a run's failure count to the process exit code.
func ExitCode(total, failed int) int {
	switch {
	case failed == 0:
		return ExitOK
	case failed >= total:
		return ExitFailed
	default:
		return ExitPartial
	}
}

