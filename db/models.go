package db

import (
	"gorm.io/gorm"
)

// Setting is one persisted key/value pair. Provider API keys live here under
// "<providerId>.apiKey" keys; UpdatedBy records who changed the value last.
type Setting struct {
	gorm.Model
	Key       string `gorm:"uniqueIndex"`
	Value     string
	UpdatedBy string
}

// InstalledMod records a mod the install command downloaded into the server
// directory, so later runs know what is present and where it came from.
type InstalledMod struct {
	gorm.Model
	ProviderID     string `gorm:"index:idx_provider_project,unique"`
	ProjectID      string `gorm:"index:idx_provider_project,unique"`
	ProjectTitle   string
	IconURL        string
	VersionID      string
	VersionName    string
	Classification string
	FileName       string
	FileSize       int64
	InstallPath    string
}
