package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	provider, name, err := ParseRef("openai/gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider)
	assert.Equal(t, "gpt-4o-mini", name)

	// Only the first separator is significant.
	provider, name, err = ParseRef("openrouter/meta/llama-3-70b")
	require.NoError(t, err)
	assert.Equal(t, "openrouter", provider)
	assert.Equal(t, "meta/llama-3-70b", name)

	for _, ref := range []string{"", "openai", "/gpt-4o", "openai/"} {
		_, _, err := ParseRef(ref)
		assert.Error(t, err, "ref %q", ref)
		kind, ok := KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, KindConfig, kind)
	}
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig("anthropic/claude-3-5-sonnet-20241022")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemperature, cfg.Temperature)
	assert.Equal(t, int64(DefaultMaxOutputTokens), cfg.MaxOutputTokens)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, "anthropic/claude-3-5-sonnet-20241022", cfg.Ref())
}

func TestValidateRejectsChainedBackups(t *testing.T) {
	cfg := Config{
		Provider: "openai",
		Model:    "gpt-4o",
		Backup: &Config{
			Provider: "anthropic",
			Model:    "claude-3-5-sonnet-20241022",
			Backup:   &Config{Provider: "openai", Model: "gpt-4o-mini"},
		},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup")
}

func TestValidateRequiresProviderAndModel(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{Provider: "openai"}).Validate())
	assert.NoError(t, (&Config{Provider: "openai", Model: "gpt-4o"}).Validate())
}

func TestNormalizeReachesBackup(t *testing.T) {
	cfg := Config{
		Provider: "openai",
		Model:    "gpt-4o",
		Backup:   &Config{Provider: "anthropic", Model: "claude-3-5-haiku-20241022"},
	}
	cfg.Normalize()
	assert.Equal(t, DefaultMaxRetries, cfg.Backup.MaxRetries)
	assert.Equal(t, DefaultTemperature, cfg.Backup.Temperature)
}
