package models

import "fmt"

const (
	DefaultTargetTokens = 3000
	DefaultMaxTokens    = 6000
	DefaultMinTokens    = 500
)

// ChunkerConfig bounds chunk sizes in estimated tokens.
// Zero fields fall back to the defaults, so a partially filled value is valid.
type ChunkerConfig struct {
	TargetTokens int `json:"target_tokens,omitempty" yaml:"target_tokens,omitempty"`
	MaxTokens    int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	MinTokens    int `json:"min_tokens,omitempty" yaml:"min_tokens,omitempty"`
}

// WithDefaults returns a copy with every unset field filled in.
func (c ChunkerConfig) WithDefaults() ChunkerConfig {
	if c.TargetTokens <= 0 {
		c.TargetTokens = DefaultTargetTokens
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MinTokens <= 0 {
		c.MinTokens = DefaultMinTokens
	}
	return c
}

// Validate checks the budgets are ordered min <= target <= max.
func (c ChunkerConfig) Validate() error {
	c = c.WithDefaults()
	if c.MinTokens > c.MaxTokens {
		return fmt.Errorf("min_tokens (%d) exceeds max_tokens (%d)", c.MinTokens, c.MaxTokens)
	}
	if c.TargetTokens > c.MaxTokens {
		return fmt.Errorf("target_tokens (%d) exceeds max_tokens (%d)", c.TargetTokens, c.MaxTokens)
	}
	return nil
}

// Chunk is a bounded-size excerpt of one document.
type Chunk struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	Content         string `json:"-" yaml:"-"`
	HeadingLevel    int    `json:"heading_level" yaml:"heading_level"`
	EstimatedTokens int    `json:"estimated_tokens" yaml:"estimated_tokens"`
}
