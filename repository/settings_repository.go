package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"voxfolio/model"
)

// SettingsRepository stores per-artist site settings.
type SettingsRepository interface {
	GetSettings(artistID int64) (*model.SiteSettings, error)
	UpsertSettings(settings *model.SiteSettings) error
}

type gormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a SettingsRepository over GORM.
func NewGormSettingsRepository(db *gorm.DB) SettingsRepository {
	return &gormSettingsRepository{db: db}
}

// GetSettings returns the artist's settings, or (nil, nil) when none exist
// yet.
func (r *gormSettingsRepository) GetSettings(artistID int64) (*model.SiteSettings, error) {
	var settings model.SiteSettings
	err := r.db.Where("artist_id = ?", artistID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}
	return &settings, nil
}

// UpsertSettings creates or replaces the artist's settings row.
func (r *gormSettingsRepository) UpsertSettings(settings *model.SiteSettings) error {
	existing, err := r.GetSettings(settings.ArtistID)
	if err != nil {
		return err
	}
	if existing != nil {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
	}
	if err := r.db.Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save site settings: %w", err)
	}
	return nil
}
