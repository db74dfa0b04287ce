package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hacheraw/hytale-server-manager/db"
	"github.com/hacheraw/hytale-server-manager/logger"
	"github.com/hacheraw/hytale-server-manager/provider"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install [providerId] [projectId] [versionId]",
	Short: "Download a mod version into the server directory",
	Long: `Download a mod from a marketplace into the matching server
subdirectory and record it in the local database.
When versionId is omitted the latest version is installed.
Example: hytale-server-manager install hytalehub 1432`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(_ *cobra.Command, args []string) {
		versionID := ""
		if len(args) == 3 {
			versionID = args[2]
		}
		runInstall(args[0], args[1], versionID)
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}

// getTargetSubDir returns the server subdirectory for a classification.
func getTargetSubDir(c provider.Classification) string {
	switch c {
	case provider.ClassificationSave:
		return "saves"
	case provider.ClassificationArt, provider.ClassificationModpack:
		return "packs"
	default:
		return "mods"
	}
}

func runInstall(providerID, projectID, versionID string) {
	cfg, service := bootstrap(".")
	ctx := context.Background()

	log := logger.Log.With(
		zap.String("provider", providerID),
		zap.String("project", projectID),
	)

	stream, meta, err := service.DownloadForInstallation(ctx, providerID, projectID, versionID)
	if err != nil {
		log.Fatalw("Failed to start download", zap.Error(err))
	}
	defer stream.Close()

	fileName := meta.FileName
	if fileName == "" {
		fileName = meta.ProjectID + "-" + meta.VersionID + ".zip"
	}
	targetDir := filepath.Join(cfg.HytaleDir, getTargetSubDir(meta.Classification))
	targetPath := filepath.Join(targetDir, fileName)

	removeExistingInstall(providerID, projectID, log)

	if err := writeStream(targetPath, stream); err != nil {
		log.Fatalw("Failed to write downloaded file", zap.String("path", targetPath), zap.Error(err))
	}

	record := db.InstalledMod{
		ProviderID:     meta.ProviderID,
		ProjectID:      meta.ProjectID,
		ProjectTitle:   meta.ProjectTitle,
		IconURL:        meta.IconURL,
		VersionID:      meta.VersionID,
		VersionName:    meta.VersionName,
		Classification: string(meta.Classification),
		FileName:       fileName,
		FileSize:       meta.FileSize,
		InstallPath:    targetPath,
	}
	if err := upsertInstalledMod(record); err != nil {
		log.Warnw("Failed to save installed mod to database", zap.Error(err))
	}

	log.Infow("Installed mod",
		zap.String("title", meta.ProjectTitle),
		zap.String("version", meta.VersionName),
		zap.String("path", targetPath),
	)
}

// removeExistingInstall deletes the previously installed file for this
// project, if one is recorded. A missing file is fine; the record gets
// replaced either way.
func removeExistingInstall(providerID, projectID string, log *zap.SugaredLogger) {
	var existing db.InstalledMod
	result := db.DB.Where("provider_id = ? AND project_id = ?", providerID, projectID).First(&existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warnw("Failed to query installed mods", zap.Error(result.Error))
		}
		return
	}

	if err := os.Remove(existing.InstallPath); err != nil && !os.IsNotExist(err) {
		log.Warnw("Failed to remove previously installed file",
			zap.String("path", existing.InstallPath),
			zap.Error(err),
		)
	}
}

func upsertInstalledMod(record db.InstalledMod) error {
	var existing db.InstalledMod
	result := db.DB.Where("provider_id = ? AND project_id = ?", record.ProviderID, record.ProjectID).First(&existing)
	if result.Error == nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		return db.DB.Save(&record).Error
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return db.DB.Create(&record).Error
}

// writeStream copies the download stream to path, cleaning up the partial
// file on failure.
func writeStream(path string, stream io.Reader) error {
	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, stream); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
