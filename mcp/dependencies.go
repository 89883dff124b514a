package mcp

import (
	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	loader      *service.StructureConfigurationLoaderImpl
	baseRequest *domain.StructureRequest
	configPath  string
}

// NewDependencies constructs the dependency set with sane defaults. When
// configPath is non-empty the file is loaded through viper (no environment
// overrides); otherwise .cobscn.toml is discovered by walking up
// from the working directory, falling back to built-in defaults.
func NewDependencies(configPath string) (*Dependencies, error) {
	loader := service.NewStructureConfigurationLoader()

	var base *domain.StructureRequest
	if configPath != "" {
		req, err := service.LoadStructureRequestFromViper(configPath)
		if err != nil {
			return nil, err
		}
		base = req
	} else {
		req, err := loader.LoadConfig("")
		if err != nil {
			base = loader.LoadDefaultConfig()
		} else {
			base = req
		}
	}

	return &Dependencies{
		loader:      loader,
		baseRequest: base,
		configPath:  configPath,
	}, nil
}

// BaseRequest returns a copy of the configured request defaults; handlers
// layer per-call arguments over it without mutating the shared snapshot.
func (d *Dependencies) BaseRequest() domain.StructureRequest {
	return *d.baseRequest
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}
