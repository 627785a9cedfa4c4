package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/pluginreviews/internal/config"
)

//go:embed templates/pluginreviews.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new pluginreviews configuration file",
		Long: `Initialize creates a new .pluginreviews configuration file in the current directory.

The generated file includes:
- Default render attributes applied to every plugin
- Commented examples for per-plugin attributes and review markup
- Cache, proxy and server settings

Examples:
  # Create .pluginreviews in current directory
  pluginreviews init

  # Create config file at a specific path
  pluginreviews init -o ~/.config/pluginreviews/config.yaml

  # Force overwrite existing file
  pluginreviews init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/pluginreviews.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if err := ensureDir(outputPath); err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - Render attributes per plugin slug")
	fmt.Fprintln(out, "  - The markup of a single review")
	fmt.Fprintln(out, "  - The cache backend and its time to live")

	return nil
}

// ensureDir creates the parent directory of path if needed.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
