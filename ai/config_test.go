package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NotEmpty(t, cfg.Host)
	assert.NotEmpty(t, cfg.Model)
	assert.Positive(t, cfg.MaxTerms)
	assert.Positive(t, cfg.RequestTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://example.com/v1"),
		WithModel("gpt-4o-mini"),
		WithMaxTerms(5),
		WithRequestTimeout(2*time.Second),
	)
	assert.Equal(t, "http://example.com/v1", cfg.Host)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 5, cfg.MaxTerms)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestConfigValidate(t *testing.T) {
	t.Run("empty host", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Host = ""
		assert.ErrorIs(t, cfg.Validate(), ErrEmptyHost)
	})

	t.Run("empty model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Model = ""
		assert.ErrorIs(t, cfg.Validate(), ErrEmptyModel)
	})

	t.Run("bad max terms", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxTerms = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidMaxTerms)
	})

	t.Run("bad timeout", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RequestTimeout = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidTimeout)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("strips trailing slash first", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("keeps existing v1", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})
}
