// Package config loads and validates cobscn's project configuration.
package config

import (
	"fmt"
)

// Config is the root configuration for a cobscn run.
type Config struct {
	Reduction   ReductionConfig   `mapstructure:"reduction" toml:"reduction"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics" toml:"diagnostics"`
	Driver      DriverConfig      `mapstructure:"driver" toml:"driver"`
}

// ReductionConfig controls the S6 block-reduction engine.
type ReductionConfig struct {
	// Budget bounds the number of reduction steps the engine may take
	// before it gives up with ErrCodeReductionBudget. Zero means unlimited.
	Budget int `mapstructure:"budget" toml:"budget"`

	// KeepRawGotos disables GOTO elision: every GO TO statement survives
	// into the structured tree instead of being replaced by control flow.
	KeepRawGotos bool `mapstructure:"keep_raw_gotos" toml:"keep_raw_gotos"`

	// LabelPrefix prefixes synthetic labels allocated for residual gotos.
	LabelPrefix string `mapstructure:"label_prefix" toml:"label_prefix"`
}

// DiagnosticsConfig controls intermediate-stage debug output.
type DiagnosticsConfig struct {
	// EmitDot writes a DOT dump of each requested pipeline stage.
	EmitDot bool `mapstructure:"emit_dot" toml:"emit_dot"`

	// DotDir is the directory DOT dumps are written to.
	DotDir string `mapstructure:"dot_dir" toml:"dot_dir"`
}

// DriverConfig controls the per-section worker pool.
type DriverConfig struct {
	// MaxConcurrency bounds the number of sections processed in parallel.
	// Zero means GOMAXPROCS.
	MaxConcurrency int `mapstructure:"max_concurrency" toml:"max_concurrency"`
}

// DefaultConfig returns the configuration used when no .cobscn.toml is
// found and no flags override it.
func DefaultConfig() *Config {
	return &Config{
		Reduction: ReductionConfig{
			Budget:       0,
			KeepRawGotos: false,
			LabelPrefix:  "__line",
		},
		Diagnostics: DiagnosticsConfig{
			EmitDot: false,
			DotDir:  ".cobscn/dot",
		},
		Driver: DriverConfig{
			MaxConcurrency: 0,
		},
	}
}

// LoadConfig loads configuration from configPath, or discovers
// .cobscn.toml by walking up from the working directory when configPath
// is empty. It always returns a valid *Config, falling back to
// DefaultConfig() when no file is found.
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigFromDir(configPath, "")
}

// LoadConfigFromDir is LoadConfig with an explicit starting directory for
// discovery, used by tests and by callers analyzing a target other than
// the working directory.
func LoadConfigFromDir(configPath string, startDir string) (*Config, error) {
	loader := NewTomlConfigLoader()

	resolved, err := loader.ResolveConfigPath(configPath, startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration: %w", err)
	}

	cfg := DefaultConfig()
	if resolved != "" {
		if err := loader.LoadInto(resolved, cfg); err != nil {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", resolved, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration values that the pipeline cannot act on.
func (c *Config) Validate() error {
	if c.Reduction.Budget < 0 {
		return fmt.Errorf("reduction.budget must be >= 0, got %d", c.Reduction.Budget)
	}
	if c.Reduction.LabelPrefix == "" {
		return fmt.Errorf("reduction.label_prefix must not be empty")
	}
	if c.Driver.MaxConcurrency < 0 {
		return fmt.Errorf("driver.max_concurrency must be >= 0, got %d", c.Driver.MaxConcurrency)
	}
	return nil
}
