package service

import (
	"fmt"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/config"
	"github.com/spf13/viper"
)

// StructureConfigurationLoaderImpl translates a loaded .cobscn.toml into the
// domain.StructureRequest defaults the CLI and MCP server start from.
type StructureConfigurationLoaderImpl struct{}

// NewStructureConfigurationLoader creates a new structure configuration loader service
func NewStructureConfigurationLoader() *StructureConfigurationLoaderImpl {
	return &StructureConfigurationLoaderImpl{}
}

// LoadConfig loads structuring configuration from the specified path (or by
// walk-up discovery when path is empty).
func (cl *StructureConfigurationLoaderImpl) LoadConfig(path string) (*domain.StructureRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cl.configToRequest(cfg), nil
}

// LoadDefaultConfig loads the default structuring configuration
func (cl *StructureConfigurationLoaderImpl) LoadDefaultConfig() *domain.StructureRequest {
	return cl.configToRequest(config.DefaultConfig())
}

// MergeConfig merges CLI/tool-call values over a base request. Only fields
// the caller actually supplied (non-zero) win.
func (cl *StructureConfigurationLoaderImpl) MergeConfig(base, override *domain.StructureRequest) *domain.StructureRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if len(override.Sections) > 0 {
		merged.Sections = override.Sections
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.LabelPrefix != "" {
		merged.LabelPrefix = override.LabelPrefix
	}
	if override.ReductionBudget > 0 {
		merged.ReductionBudget = override.ReductionBudget
	}
	if override.DumpStage != "" {
		merged.DumpStage = override.DumpStage
	}
	if override.DotDir != "" {
		merged.DotDir = override.DotDir
	}
	if override.MaxConcurrency > 0 {
		merged.MaxConcurrency = override.MaxConcurrency
	}

	// Booleans: the override always wins; false is indistinguishable from
	// "not supplied" and callers pass their parsed flag value either way.
	merged.KeepRawGotos = override.KeepRawGotos
	merged.Verbose = override.Verbose

	return &merged
}

// StructureConfigurationLoaderWithFlags wraps configuration loading with
// explicit flag tracking, so a value the user actually typed on the command
// line wins over the file while untouched flags defer to it.
type StructureConfigurationLoaderWithFlags struct {
	loader        *StructureConfigurationLoaderImpl
	flagTracker   *config.FlagTracker
	explicitFlags map[string]bool
}

// NewStructureConfigurationLoaderWithFlags creates a new structure configuration loader that tracks explicit flags
func NewStructureConfigurationLoaderWithFlags(explicitFlags map[string]bool) *StructureConfigurationLoaderWithFlags {
	return &StructureConfigurationLoaderWithFlags{
		loader:        NewStructureConfigurationLoader(),
		flagTracker:   config.NewFlagTrackerWithFlags(explicitFlags),
		explicitFlags: explicitFlags,
	}
}

// LoadConfig loads structuring configuration from the specified path
func (c *StructureConfigurationLoaderWithFlags) LoadConfig(path string) (*domain.StructureRequest, error) {
	return c.loader.LoadConfig(path)
}

// LoadConfigFromDir loads structuring configuration discovered from startDir
func (c *StructureConfigurationLoaderWithFlags) LoadConfigFromDir(path, startDir string) (*domain.StructureRequest, error) {
	cfg, err := config.LoadConfigFromDir(path, startDir)
	if err != nil {
		return nil, err
	}
	return c.loader.configToRequest(cfg), nil
}

// LoadDefaultConfig loads the default structuring configuration
func (c *StructureConfigurationLoaderWithFlags) LoadDefaultConfig() *domain.StructureRequest {
	return c.loader.LoadDefaultConfig()
}

// MergeConfig merges CLI flags with configuration file, respecting explicit flags
func (c *StructureConfigurationLoaderWithFlags) MergeConfig(base, override *domain.StructureRequest) *domain.StructureRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	// Paths and sections always come from command arguments.
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	merged.Sections = config.MergeStringSlice(merged.Sections, override.Sections, "sections", c.explicitFlags)

	if config.WasExplicitlySet(c.explicitFlags, "format") && override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}

	merged.KeepRawGotos = c.flagTracker.MergeBool(merged.KeepRawGotos, override.KeepRawGotos, "keep-raw-gotos")
	merged.LabelPrefix = c.flagTracker.MergeString(merged.LabelPrefix, override.LabelPrefix, "label-prefix")
	merged.ReductionBudget = c.flagTracker.MergeInt(merged.ReductionBudget, override.ReductionBudget, "budget")
	merged.DumpStage = c.flagTracker.MergeString(merged.DumpStage, override.DumpStage, "dump-stage")
	merged.DotDir = c.flagTracker.MergeString(merged.DotDir, override.DotDir, "dot-dir")
	merged.MaxConcurrency = c.flagTracker.MergeInt(merged.MaxConcurrency, override.MaxConcurrency, "max-concurrency")

	// Verbose comes from the root command's persistent flag, never the file.
	merged.Verbose = override.Verbose

	return &merged
}

// configToRequest converts internal config to a structure request. Empty
// string fields fall back to the built-in defaults, so a partially
// populated Config (e.g. one viper unmarshalled from a sparse file) still
// yields a usable request.
func (cl *StructureConfigurationLoaderImpl) configToRequest(cfg *config.Config) *domain.StructureRequest {
	labelPrefix := cfg.Reduction.LabelPrefix
	if labelPrefix == "" {
		labelPrefix = domain.DefaultLabelPrefix
	}
	dotDir := cfg.Diagnostics.DotDir
	if dotDir == "" {
		dotDir = domain.DefaultDotDir
	}
	req := &domain.StructureRequest{
		OutputFormat:    domain.OutputFormatText,
		KeepRawGotos:    cfg.Reduction.KeepRawGotos,
		LabelPrefix:     labelPrefix,
		ReductionBudget: cfg.Reduction.Budget,
		DotDir:          dotDir,
		MaxConcurrency:  cfg.Driver.MaxConcurrency,
	}
	if cfg.Diagnostics.EmitDot {
		req.DumpStage = "s5"
	}
	return req
}

// LoadStructureRequestFromViper loads structuring configuration from the
// given file using viper (any format viper reads from the file's extension).
// No environment variables are bound.
func LoadStructureRequestFromViper(configPath string) (*domain.StructureRequest, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	setViperDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var reduction config.ReductionConfig
	if err := v.UnmarshalKey("reduction", &reduction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reduction config: %w", err)
	}
	var diagnostics config.DiagnosticsConfig
	if err := v.UnmarshalKey("diagnostics", &diagnostics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagnostics config: %w", err)
	}
	var driver config.DriverConfig
	if err := v.UnmarshalKey("driver", &driver); err != nil {
		return nil, fmt.Errorf("failed to unmarshal driver config: %w", err)
	}

	loader := NewStructureConfigurationLoader()
	return loader.configToRequest(&config.Config{
		Reduction:   reduction,
		Diagnostics: diagnostics,
		Driver:      driver,
	}), nil
}

// setViperDefaults sets default values in viper
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("reduction.budget", domain.DefaultReductionBudget)
	v.SetDefault("reduction.keep_raw_gotos", false)
	v.SetDefault("reduction.label_prefix", domain.DefaultLabelPrefix)
	v.SetDefault("diagnostics.emit_dot", false)
	v.SetDefault("diagnostics.dot_dir", domain.DefaultDotDir)
	v.SetDefault("driver.max_concurrency", domain.DefaultMaxGoroutines)
}
