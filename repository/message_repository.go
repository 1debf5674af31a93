package repository

import (
	"fmt"

	"gorm.io/gorm"

	"voxfolio/model"
)

// MessageRepository stores contact-form inquiries.
type MessageRepository interface {
	CreateMessage(msg *model.ContactMessage) error
	ListMessages(artistID int64) ([]model.ContactMessage, error)
	MarkRead(artistID int64, id uint) error
}

type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a MessageRepository over GORM.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) CreateMessage(msg *model.ContactMessage) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

func (r *gormMessageRepository) ListMessages(artistID int64) ([]model.ContactMessage, error) {
	var out []model.ContactMessage
	err := r.db.Where("artist_id = ?", artistID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return out, nil
}

func (r *gormMessageRepository) MarkRead(artistID int64, id uint) error {
	res := r.db.Model(&model.ContactMessage{}).
		Where("id = ? AND artist_id = ?", id, artistID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark message read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("message %d not found for artist %d", id, artistID)
	}
	return nil
}
