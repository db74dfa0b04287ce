package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacheraw/hytale-server-manager/logger"
)

// providersCmd groups the provider management subcommands
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect and configure mod marketplace providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and their configuration state",
	Run: func(_ *cobra.Command, _ []string) {
		_, service := bootstrap(".")

		for _, info := range service.GetProviders() {
			state := "not configured"
			if info.IsConfigured {
				state = "configured"
			} else if !info.RequiresAPIKey {
				state = "no key required"
			}
			fmt.Printf("%-12s  %-12s  %s\n", info.ID, state, info.DisplayName)
		}
	},
}

var providersConfigureCmd = &cobra.Command{
	Use:   "configure [providerId]",
	Short: "Store an API key for a provider",
	Long: `Store an API key for a provider and re-run its initialization.
Example: hytale-server-manager providers configure curseforge --key $CF_KEY`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		providerID := args[0]
		key, _ := cmd.Flags().GetString("key")
		if key == "" {
			logger.Log.Fatal("Error: --key must be set.")
		}

		_, service := bootstrap(".")
		if err := service.SetAPIKey(context.Background(), providerID, key, "cli"); err != nil {
			logger.Log.Fatalw("Failed to configure provider",
				zap.String("provider", providerID),
				zap.Error(err),
			)
		}
		logger.Log.Infow("Provider configured", zap.String("provider", providerID))
	},
}

func init() {
	providersConfigureCmd.Flags().String("key", "", "API key to store for the provider")
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersConfigureCmd)
	rootCmd.AddCommand(providersCmd)
}
