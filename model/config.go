package model

import (
	"fmt"
	"strings"
)

// Default generation parameters applied by Normalize.
const (
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 4096
	DefaultMaxRetries      = 3
)

// Config selects and parameterizes a model backend.
//
// Backup, when set, names an alternate configuration used at most once per
// run, after the primary's retry budget is exhausted. Backup configs must not
// themselves carry a backup; Validate rejects chained backups.
type Config struct {
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int64   `json:"max_output_tokens"`
	ReasoningEffort string  `json:"reasoning_effort,omitempty"`
	MaxRetries      int     `json:"max_retries"`
	APIKey          string  `json:"-"`
	Backup          *Config `json:"backup,omitempty"`
}

// ParseRef splits a "provider/model-name" reference. The model name may
// itself contain slashes (e.g. hosted routes), so only the first separator
// is significant.
func ParseRef(ref string) (provider, name string, err error) {
	provider, name, ok := strings.Cut(ref, "/")
	if !ok || provider == "" || name == "" {
		return "", "", NewError(KindConfig, "", fmt.Sprintf("invalid model reference %q, want provider/model-name", ref), nil)
	}
	return provider, name, nil
}

// NewConfig builds a Config from a "provider/model-name" reference.
func NewConfig(ref string) (Config, error) {
	provider, name, err := ParseRef(ref)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Provider: provider, Model: name}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills zero-valued generation parameters with defaults. Applied
// recursively to the backup config.
func (c *Config) Normalize() {
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Backup != nil {
		c.Backup.Normalize()
	}
}

// Validate checks structural invariants. It does not verify that the
// provider is registered; New does that so validation stays network- and
// registry-independent.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return NewError(KindConfig, "", "provider must not be empty", nil)
	}
	if c.Model == "" {
		return NewError(KindConfig, c.Provider, "model name must not be empty", nil)
	}
	if c.Backup != nil {
		if c.Backup.Backup != nil {
			return NewError(KindConfig, c.Provider, "backup model must not carry its own backup", nil)
		}
		if err := c.Backup.Validate(); err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
	}
	return nil
}

// Ref returns the "provider/model-name" form of the config.
func (c Config) Ref() string { return c.Provider + "/" + c.Model }
