package model

import (
	"runtime"
	"time"
)

// Config is the complete veracite configuration
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Server      ServerConfig      `yaml:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
	LLM         LLMConfig         `yaml:"llm"`
}

// StoreConfig configures the SQLite-backed knowledge store
type StoreConfig struct {
	Path         string        `yaml:"path"`          // SQLite database path
	QueryTimeout time.Duration `yaml:"query_timeout"` // Per-query timeout
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers            int     `yaml:"workers"`               // Parallel document checks
	StoreQueriesPerSec float64 `yaml:"store_queries_per_sec"` // Rate limit on retrieval queries
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// LLMConfig configures the optional reformulation fallback.
// Disabled unless a provider is named. The reformulator never affects
// scoring or verification verdicts.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // From environment, never persisted
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:         "veracite.db",
			QueryTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8742",
		},
		Concurrency: ConcurrencyConfig{
			Workers:            runtime.NumCPU(),
			StoreQueriesPerSec: 20,
		},
		Output: OutputConfig{},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 1000,
		},
	}
}
