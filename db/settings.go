package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settings is the gorm-backed settings store the provider service consumes.
type Settings struct {
	db *gorm.DB
}

// NewSettings creates a settings store over an open gorm handle.
func NewSettings(database *gorm.DB) *Settings {
	return &Settings{db: database}
}

// Get returns the stored value for key. The second return is false when no
// value is stored.
func (s *Settings) Get(key string) (string, bool, error) {
	var setting Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting.Value, true, nil
}

// Set stores a value under key, recording the actor that changed it.
func (s *Settings) Set(key, value, actor string) error {
	setting := Setting{Key: key, Value: value, UpdatedBy: actor}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}
