package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultFetchConfig(), cfg.Fetch)
		assert.Equal(t, ChunkerConfig{}, cfg.Chunker)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "fetch:\n  workers: 8\n  timeout: 5s\n  rate_limit: 2.5\nchunker:\n  max_tokens: 4000\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Fetch.WorkerCount)
		assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 2.5, cfg.Fetch.RateLimit)
		assert.Equal(t, DefaultRetries, cfg.Fetch.Retries)
		assert.Equal(t, 4000, cfg.Chunker.WithDefaults().MaxTokens)
		assert.Equal(t, DefaultMinTokens, cfg.Chunker.WithDefaults().MinTokens)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("fetch: [\n"), 0600))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestFetchConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FetchConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*FetchConfig) {}},
		{name: "zero workers", mutate: func(c *FetchConfig) { c.WorkerCount = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *FetchConfig) { c.Timeout = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *FetchConfig) { c.Retries = -1 }, wantErr: true},
		{name: "no retries", mutate: func(c *FetchConfig) { c.Retries = 0 }},
		{name: "negative rate", mutate: func(c *FetchConfig) { c.RateLimit = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFetchConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunkerConfigValidate(t *testing.T) {
	assert.NoError(t, ChunkerConfig{}.Validate())
	assert.NoError(t, ChunkerConfig{MaxTokens: 100, TargetTokens: 80, MinTokens: 10}.Validate())
	assert.Error(t, ChunkerConfig{MaxTokens: 100, MinTokens: 200, TargetTokens: 50}.Validate())
	// target falls back to 3000 which exceeds the explicit max
	assert.Error(t, ChunkerConfig{MaxTokens: 1000, MinTokens: 10}.Validate())
}
