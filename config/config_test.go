package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbyte/agentrun/model"
)

const sampleYAML = `
model:
  ref: openai/gpt-4o
  temperature: 0.2
  max_output_tokens: 2048
  max_retries: 5
  backup:
    ref: anthropic/claude-3-5-sonnet-20241022
    reasoning_effort: high
run:
  system_prompt: "You are a research assistant."
  max_iterations: 12
  json_mode: true
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-4o", f.Model.Ref)
	assert.Equal(t, 0.2, f.Model.Temperature)
	assert.Equal(t, 5, f.Model.MaxRetries)
	require.NotNil(t, f.Model.Backup)
	assert.Equal(t, "anthropic/claude-3-5-sonnet-20241022", f.Model.Backup.Ref)

	assert.Equal(t, "You are a research assistant.", f.Run.SystemPrompt)
	assert.Equal(t, 12, f.Run.MaxIterations)
	assert.True(t, f.Run.JSONMode)
	assert.False(t, f.Run.Streaming)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing ref", "run:\n  max_iterations: 3\n", "model.ref"},
		{"malformed ref", "model:\n  ref: gpt-4o\n", "model.ref"},
		{"bad backup ref", "model:\n  ref: openai/gpt-4o\n  backup:\n    ref: claude\n", "model.backup.ref"},
		{
			"chained backup",
			"model:\n  ref: openai/gpt-4o\n  backup:\n    ref: anthropic/claude-3-5-sonnet-20241022\n    backup:\n      ref: openai/gpt-4o-mini\n",
			"model.backup.backup",
		},
		{"negative iterations", "model:\n  ref: openai/gpt-4o\nrun:\n  max_iterations: -1\n", "max_iterations"},
		{"invalid yaml", "model: [not a mapping", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o", f.Model.Ref)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestModelConfig(t *testing.T) {
	f, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	cfg, err := f.ModelConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, int64(2048), cfg.MaxOutputTokens)
	assert.Equal(t, 5, cfg.MaxRetries)

	require.NotNil(t, cfg.Backup)
	assert.Equal(t, "anthropic", cfg.Backup.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Backup.Model)
	assert.Equal(t, "high", cfg.Backup.ReasoningEffort)
	// Unset backup fields pick up normalized defaults.
	assert.Equal(t, model.DefaultMaxRetries, cfg.Backup.MaxRetries)
	assert.Equal(t, model.DefaultTemperature, cfg.Backup.Temperature)
}
