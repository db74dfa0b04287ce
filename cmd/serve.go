package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacheraw/hytale-server-manager/logger"
	"github.com/hacheraw/hytale-server-manager/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the server management HTTP API",
	Long: `Starts the HTTP API the web panel talks to, including the mod
marketplace endpoints under /api/v1.`,
	Run: func(_ *cobra.Command, _ []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() {
	cfg, service := bootstrap(".")

	srv := server.New(service, logger.Log)
	if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Log.Fatalw("HTTP server stopped", zap.Error(err))
	}
}
