package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactMessage is an inquiry sent through a public portfolio's contact
// form.
type ContactMessage struct {
	gorm.Model
	UUID       string `json:"uuid" gorm:"uniqueIndex"`
	ArtistID   int64  `json:"artistId" gorm:"not null;index"`
	SenderName string `json:"senderName" gorm:"not null"`
	Email      string `json:"email" gorm:"not null"`
	Subject    string `json:"subject"`
	Body       string `json:"body" gorm:"type:text;not null"`
	Read       bool   `json:"read" gorm:"default:false"`
}

// BeforeCreate assigns a UUID before the row is inserted.
func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.New().String()
	}
	return nil
}

func (ContactMessage) TableName() string { return "contact_messages" }
