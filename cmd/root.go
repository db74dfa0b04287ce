package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; subcommands attach themselves in their init.
var rootCmd = &cobra.Command{
	Use:   "hytale-server-manager",
	Short: "Manage a Hytale server and its mods",
	Long: `hytale-server-manager runs the server management API and installs mods
from the configured marketplaces (Hytale Hub, CurseForge).`,
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
