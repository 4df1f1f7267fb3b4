// Package config loads engine and model settings from YAML files. Loading
// follows parse, normalize, validate; validation errors name the offending
// field so misconfigured deployments fail fast and clearly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowbyte/agentrun/model"
)

// ModelSettings mirrors model.Config in YAML form. Ref uses the
// "provider/model-name" notation.
type ModelSettings struct {
	Ref             string         `yaml:"ref"`
	Temperature     float64        `yaml:"temperature"`
	MaxOutputTokens int64          `yaml:"max_output_tokens"`
	ReasoningEffort string         `yaml:"reasoning_effort"`
	MaxRetries      int            `yaml:"max_retries"`
	Backup          *ModelSettings `yaml:"backup"`
}

// RunSettings configures engine behavior for a deployment.
type RunSettings struct {
	SystemPrompt  string `yaml:"system_prompt"`
	MaxIterations int    `yaml:"max_iterations"`
	JSONMode      bool   `yaml:"json_mode"`
	Streaming     bool   `yaml:"streaming"`
}

// File is the root of the YAML configuration document.
type File struct {
	Model ModelSettings `yaml:"model"`
	Run   RunSettings   `yaml:"run"`
}

// Load reads, parses and validates a config file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration bytes.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	if err := f.validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

func (f *File) validate() error {
	if f.Model.Ref == "" {
		return fmt.Errorf("config: model.ref must be set")
	}
	if _, _, err := model.ParseRef(f.Model.Ref); err != nil {
		return fmt.Errorf("config: model.ref: %w", err)
	}
	if f.Model.Backup != nil {
		if f.Model.Backup.Backup != nil {
			return fmt.Errorf("config: model.backup.backup must not be set")
		}
		if _, _, err := model.ParseRef(f.Model.Backup.Ref); err != nil {
			return fmt.Errorf("config: model.backup.ref: %w", err)
		}
	}
	if f.Run.MaxIterations < 0 {
		return fmt.Errorf("config: run.max_iterations must not be negative")
	}
	return nil
}

// ModelConfig converts the YAML model settings into a normalized
// model.Config, including the backup configuration.
func (f File) ModelConfig() (model.Config, error) {
	cfg, err := toModelConfig(f.Model)
	if err != nil {
		return model.Config{}, err
	}
	if f.Model.Backup != nil {
		backup, err := toModelConfig(*f.Model.Backup)
		if err != nil {
			return model.Config{}, err
		}
		cfg.Backup = &backup
	}
	cfg.Normalize()
	return cfg, nil
}

func toModelConfig(s ModelSettings) (model.Config, error) {
	provider, name, err := model.ParseRef(s.Ref)
	if err != nil {
		return model.Config{}, err
	}
	return model.Config{
		Provider:        provider,
		Model:           name,
		Temperature:     s.Temperature,
		MaxOutputTokens: s.MaxOutputTokens,
		ReasoningEffort: s.ReasoningEffort,
		MaxRetries:      s.MaxRetries,
	}, nil
}
