package config

import (
	"fmt"
	"time"
)

// BuildConfig contains the external build command configuration
type BuildConfig struct {
	Command        string            `json:"command" yaml:"command"`
	Args           []string          `json:"args" yaml:"args"`
	WorkingDir     string            `json:"working_dir" yaml:"working_dir"`
	Env            map[string]string `json:"env" yaml:"env"`
	Timeout        time.Duration     `json:"timeout" yaml:"timeout"`
	MaxRetries     int               `json:"max_retries" yaml:"max_retries"`
	RetryInterval  time.Duration     `json:"retry_interval" yaml:"retry_interval"`
	RetryOnFailure bool              `json:"retry_on_failure" yaml:"retry_on_failure"`
	Incremental    bool              `json:"incremental" yaml:"incremental"`
	Workers        int               `json:"workers" yaml:"workers"`
}

// DefaultBuildConfig returns default build configuration
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Command:        "make",
		Args:           []string{"build"},
		WorkingDir:     ".",
		Env:            map[string]string{},
		Timeout:        5 * time.Minute,
		MaxRetries:     2,
		RetryInterval:  time.Second,
		RetryOnFailure: true,
		Incremental:    true,
		Workers:        2,
	}
}

// Validate validates build configuration
func (b *BuildConfig) Validate() error {
	if b.Command == "" {
		return fmt.Errorf("build command cannot be empty")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("build timeout must be positive")
	}
	if b.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative")
	}
	if b.RetryInterval < 0 {
		return fmt.Errorf("retry interval must be non-negative")
	}
	if b.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}
