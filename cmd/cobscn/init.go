package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/cobscn/internal/config"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		force:      false,
		configPath: ".cobscn.toml",
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize cobscn configuration file",
		Long: `Initialize a cobscn configuration file in the current directory.

Creates a .cobscn.toml file with every setting shown at its default value
and a comment explaining what it controls.

The generated configuration includes settings for:
• Reduction budget and residual-goto handling
• Synthetic label naming
• DOT diagnostics output
• Per-section concurrency

Examples:
  # Create .cobscn.toml in current directory (recommended)
  cobscn init

  # Create config file with custom name
  cobscn init --config myconfig.toml

  # Overwrite existing configuration file without prompting
  cobscn init --force`,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file without prompting")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", ".cobscn.toml", "Configuration file path")

	return cmd
}

// runInit executes the init command
func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	// An existing file needs either --force or an interactive yes.
	if _, err := os.Stat(configPath); err == nil && !i.force {
		if !isInteractiveEnvironment() {
			return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
		}
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite", i.configPath),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configDir, err)
	}

	if err := os.WriteFile(configPath, []byte(config.DefaultConfigTOML), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration file created: %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "\nTo customize cobscn for your project:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  1. Edit %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  2. Modify settings as needed\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  3. Run 'cobscn restructure .' to use your configuration\n")

	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	initCommand := NewInitCommand()
	return initCommand.CreateCobraCommand()
}
