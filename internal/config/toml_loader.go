package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the dedicated configuration file cobscn discovers by
// walking up from the target when no --config flag is given.
const ConfigFileName = ".cobscn.toml"

// DefaultConfigTOML is the file `cobscn init` writes: DefaultConfig()'s
// values spelled out as active keys with a comment each, so a user can edit
// them rather than starting from a blank file.
const DefaultConfigTOML = `# cobscn configuration. Every key below is shown at its default value.

[reduction]
# Per-section step budget for the S6 block-reduction engine. 0 = unlimited.
budget = 0
# Disable GOTO elision: every GO TO survives into the structured tree.
keep_raw_gotos = false
# Prefix for labels synthesized for residual gotos.
label_prefix = "__line"

[diagnostics]
# Write a Graphviz DOT dump of each requested pipeline stage.
emit_dot = false
# Directory DOT dumps are written to.
dot_dir = ".cobscn/dot"

[driver]
# Sections processed in parallel. 0 = GOMAXPROCS.
max_concurrency = 0
`

// TomlConfigLoader loads and discovers .cobscn.toml files. Discovery walks
// up from the working directory; there is only the one dedicated file to
// look for, since no shared project-manifest format exists for a COBOL
// toolchain.
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a loader.
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// ResolveConfigPath resolves the effective configuration file path once.
//   - If configPath is non-empty, it must exist; a file is used directly, a
//     directory is searched starting from there.
//   - If configPath is empty, targetDir (or cwd) is searched.
//
// Returns "" with a nil error when no config file was found (callers fall
// back to DefaultConfig()).
func (l *TomlConfigLoader) ResolveConfigPath(configPath, targetDir string) (string, error) {
	if configPath != "" {
		info, err := os.Stat(configPath)
		if err != nil {
			return "", fmt.Errorf("config file not found: %s", configPath)
		}
		if !info.IsDir() {
			return configPath, nil
		}
		return l.findUpFrom(configPath), nil
	}

	searchDir := targetDir
	if searchDir == "" {
		searchDir = "."
	}
	return l.findUpFrom(searchDir), nil
}

// findUpFrom walks from dir up to the filesystem root looking for
// ConfigFileName, first match wins.
func (l *TomlConfigLoader) findUpFrom(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	current := abs
	for {
		candidate := filepath.Join(current, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// LoadInto reads the TOML file at path and unmarshals it onto cfg in
// place. Fields absent from the file keep cfg's current value (cfg should
// already hold DefaultConfig() before this call): go-toml/v2's Unmarshal
// only touches keys present in the document, so no per-field pointer types
// are needed to merge into defaults.
func (l *TomlConfigLoader) LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
