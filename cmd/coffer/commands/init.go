package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/coffer/internal/config"
	"github.com/thoreinstein/coffer/internal/paths"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize coffer configuration",
	Long: `Create ~/.config/coffer/config.yaml with a commented example:
one watch group, a local storage backend, and encryption settings with a
freshly generated salt.

Edit the generated file to point at real directories before the first
backup run.`,
	Example: `  # Create the initial configuration
  coffer init

  # Replace an existing configuration
  coffer init --force`,
	RunE: runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	configPath := paths.ConfigFile()

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Printf("Configuration already exists at %s\n", configPath)
		fmt.Println("Use --force to overwrite")
		return nil
	}

	if err := config.WriteExample(configPath); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("Edit the group sources and storage roots, then run 'coffer backup'")
	return nil
}
