// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the term-generation service.
type Config struct {
	// Host is the base URL for the generation service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the model identifier used for term generation.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// MaxTerms caps how many terms a single generation call may return.
	// Default: 8
	MaxTerms int

	// RequestTimeout bounds every generation call.
	// Default: 10s
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the generation service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the generation model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithMaxTerms sets the per-call term cap.
func WithMaxTerms(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTerms = n
	}
}

// WithRequestTimeout sets the per-call deadline.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:           "http://localhost:11434/v1",
		Model:          "qwen2.5:3b",
		MaxTerms:       8,
		RequestTimeout: 10 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Most OpenAI-compatible APIs (Ollama, LocalAI, vLLM) expect the /v1 suffix.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
}

// Validation errors
var (
	// ErrEmptyHost indicates the Host field is empty.
	ErrEmptyHost = errors.New("host cannot be empty")

	// ErrEmptyModel indicates the Model field is empty.
	ErrEmptyModel = errors.New("model cannot be empty")

	// ErrInvalidMaxTerms indicates a non-positive MaxTerms value.
	ErrInvalidMaxTerms = errors.New("max terms must be positive")

	// ErrInvalidTimeout indicates a non-positive RequestTimeout.
	ErrInvalidTimeout = errors.New("request timeout must be positive")
)

// Validate checks the configuration and normalizes it.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrEmptyHost
	}
	if c.Model == "" {
		return ErrEmptyModel
	}
	if c.MaxTerms <= 0 {
		return ErrInvalidMaxTerms
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	c.Normalize()
	return nil
}
