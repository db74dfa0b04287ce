package cmd

import (
	"context"

	"go.uber.org/zap"

	"github.com/hacheraw/hytale-server-manager/config"
	"github.com/hacheraw/hytale-server-manager/db"
	"github.com/hacheraw/hytale-server-manager/logger"
	"github.com/hacheraw/hytale-server-manager/provider"
	"github.com/hacheraw/hytale-server-manager/provider/curseforge"
	"github.com/hacheraw/hytale-server-manager/provider/hytalehub"
)

// bootstrap handles shared initialization logic for commands: config,
// database, settings store, and an initialized provider service.
func bootstrap(path string) (config.Config, *provider.Service) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	db.InitDatabase(cfg.DatabasePath)
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))

	settings := db.NewSettings(db.DB)
	seedAPIKeys(cfg, settings)

	service := provider.NewService(settings, logger.Log,
		hytalehub.New(cfg.HytaleHubBaseURL, cfg.UserAgent, logger.Log),
		curseforge.New(cfg.CurseForgeBaseURL, cfg.UserAgent, logger.Log),
	)
	if err := service.Initialize(context.Background()); err != nil {
		logger.Log.Fatalw("Failed to initialize provider service", zap.Error(err))
	}

	return cfg, service
}

// seedAPIKeys copies environment-provided API keys into the settings store so
// a fresh install works without a configure call. Keys already in the store
// win: they may have been rotated through the API.
func seedAPIKeys(cfg config.Config, settings *db.Settings) {
	seed := map[string]string{
		hytalehub.ProviderID + ".apiKey":  cfg.HytaleHubAPIKey,
		curseforge.ProviderID + ".apiKey": cfg.CurseForgeAPIKey,
	}
	for key, value := range seed {
		if value == "" {
			continue
		}
		if _, exists, err := settings.Get(key); err != nil || exists {
			continue
		}
		if err := settings.Set(key, value, "env"); err != nil {
			logger.Log.Warnw("Failed to seed api key from environment",
				zap.String("setting", key),
				zap.Error(err),
			)
		}
	}
}
