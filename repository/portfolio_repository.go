package repository

import (
	"fmt"

	"gorm.io/gorm"

	"voxfolio/model"
)

// PortfolioRepository manages the GORM-backed portfolio rows (videos, gear,
// client logos, reviews).
type PortfolioRepository interface {
	ListVideos(artistID int64) ([]model.Video, error)
	SaveVideo(video *model.Video) error
	DeleteVideo(artistID int64, id uint) error

	ListGear(artistID int64) ([]model.GearItem, error)
	SaveGear(item *model.GearItem) error
	DeleteGear(artistID int64, id uint) error

	ListClients(artistID int64) ([]model.ClientLogo, error)
	SaveClient(client *model.ClientLogo) error
	DeleteClient(artistID int64, id uint) error

	ListReviews(artistID int64) ([]model.Review, error)
	SaveReview(review *model.Review) error
	DeleteReview(artistID int64, id uint) error
}

type gormPortfolioRepository struct {
	db *gorm.DB
}

// NewGormPortfolioRepository creates a PortfolioRepository over the given
// GORM handle.
func NewGormPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &gormPortfolioRepository{db: db}
}

func (r *gormPortfolioRepository) ListVideos(artistID int64) ([]model.Video, error) {
	var out []model.Video
	err := r.db.Where("artist_id = ?", artistID).Order("position ASC, id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return out, nil
}

func (r *gormPortfolioRepository) SaveVideo(video *model.Video) error {
	if err := r.db.Save(video).Error; err != nil {
		return fmt.Errorf("failed to save video: %w", err)
	}
	return nil
}

func (r *gormPortfolioRepository) DeleteVideo(artistID int64, id uint) error {
	return r.deleteOwned(&model.Video{}, artistID, id, "video")
}

func (r *gormPortfolioRepository) ListGear(artistID int64) ([]model.GearItem, error) {
	var out []model.GearItem
	err := r.db.Where("artist_id = ?", artistID).Order("position ASC, id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list gear: %w", err)
	}
	return out, nil
}

func (r *gormPortfolioRepository) SaveGear(item *model.GearItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to save gear item: %w", err)
	}
	return nil
}

func (r *gormPortfolioRepository) DeleteGear(artistID int64, id uint) error {
	return r.deleteOwned(&model.GearItem{}, artistID, id, "gear item")
}

func (r *gormPortfolioRepository) ListClients(artistID int64) ([]model.ClientLogo, error) {
	var out []model.ClientLogo
	err := r.db.Where("artist_id = ?", artistID).Order("position ASC, id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list client logos: %w", err)
	}
	return out, nil
}

func (r *gormPortfolioRepository) SaveClient(client *model.ClientLogo) error {
	if err := r.db.Save(client).Error; err != nil {
		return fmt.Errorf("failed to save client logo: %w", err)
	}
	return nil
}

func (r *gormPortfolioRepository) DeleteClient(artistID int64, id uint) error {
	return r.deleteOwned(&model.ClientLogo{}, artistID, id, "client logo")
}

func (r *gormPortfolioRepository) ListReviews(artistID int64) ([]model.Review, error) {
	var out []model.Review
	err := r.db.Where("artist_id = ?", artistID).Order("position ASC, id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return out, nil
}

func (r *gormPortfolioRepository) SaveReview(review *model.Review) error {
	if err := r.db.Save(review).Error; err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

func (r *gormPortfolioRepository) DeleteReview(artistID int64, id uint) error {
	return r.deleteOwned(&model.Review{}, artistID, id, "review")
}

// deleteOwned deletes a row only when it belongs to the artist.
func (r *gormPortfolioRepository) deleteOwned(m interface{}, artistID int64, id uint, kind string) error {
	res := r.db.Where("id = ? AND artist_id = ?", id, artistID).Delete(m)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %d not found for artist %d", kind, id, artistID)
	}
	return nil
}
