package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	ListenAddr        string `mapstructure:"LISTEN_ADDR"`
	UserAgent         string `mapstructure:"USERAGENT"`
	HytaleDir         string `mapstructure:"HYTALE_DIR"`
	CurseForgeAPIKey  string `mapstructure:"CURSEFORGE_API_KEY"`
	CurseForgeBaseURL string `mapstructure:"CURSEFORGE_BASE_URL"`
	HytaleHubAPIKey   string `mapstructure:"HYTALEHUB_API_KEY"`
	HytaleHubBaseURL  string `mapstructure:"HYTALEHUB_BASE_URL"`
	DatabasePath      string `mapstructure:"-"` // Not from env, derived
}

var envKeys = []struct {
	viperKey string
	envVar   string
}{
	{"listen_addr", "LISTEN_ADDR"},
	{"useragent", "USERAGENT"},
	{"hytale_dir", "HYTALE_DIR"},
	{"curseforge_api_key", "CURSEFORGE_API_KEY"},
	{"curseforge_base_url", "CURSEFORGE_BASE_URL"},
	{"hytalehub_api_key", "HYTALEHUB_API_KEY"},
	{"hytalehub_base_url", "HYTALEHUB_BASE_URL"},
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	// Bind environment variables automatically.
	viper.AutomaticEnv()

	for _, key := range envKeys {
		if bindErr := viper.BindEnv(key.viperKey, key.envVar); bindErr != nil {
			slog.Warn("Unable to bind env var", "var", key.envVar, "error", bindErr)
		}
	}

	if vipErr = viper.Unmarshal(&config); vipErr != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vipErr)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	// Derive DatabasePath (place it in the Hytale dir for portability)
	config.DatabasePath = filepath.Join(config.HytaleDir, "manager.db")

	return config, nil
}

// processConfigDefaults fills in defaults for values that were not provided.
func processConfigDefaults(config *Config) {
	if config.ListenAddr == "" {
		config.ListenAddr = ":8090"
	}
	if config.UserAgent == "" {
		config.UserAgent = "hytale-server-manager/dev (unknown-user)"
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}
}

// validateAndEnsureDirectories checks HYTALE_DIR and creates the directories
// downloads land in.
func validateAndEnsureDirectories(config *Config) error {
	if config.HytaleDir == "" {
		slog.Error("HYTALE_DIR is not set")
		return fmt.Errorf("HYTALE_DIR is required")
	}

	subDirs := []string{"", "mods", "saves", "packs"}
	for _, sub := range subDirs {
		dir := filepath.Join(config.HytaleDir, sub)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("Directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("Failed to create directory", "path", dir, "error", err)
				return err
			}
		} else if err != nil {
			slog.Error("Failed to check directory", "path", dir, "error", err)
			return err
		}
	}

	return nil
}
