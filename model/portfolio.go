package model

import "gorm.io/gorm"

// Portfolio rows below are managed through GORM; the demo/artist tables
// predate it and stay on the raw SQL layer.

// Video is an embedded video credit on the portfolio.
type Video struct {
	gorm.Model
	ArtistID int64  `json:"artistId" gorm:"not null;index"`
	Title    string `json:"title" gorm:"not null"`
	EmbedURL string `json:"embedUrl" gorm:"not null"`
	Position int    `json:"position" gorm:"default:0"`
}

func (Video) TableName() string { return "videos" }

// GearItem is one entry in the artist's studio gear list.
type GearItem struct {
	gorm.Model
	ArtistID    int64  `json:"artistId" gorm:"not null;index"`
	Name        string `json:"name" gorm:"not null"`
	Category    string `json:"category"` // microphone, interface, treatment...
	Description string `json:"description"`
	Position    int    `json:"position" gorm:"default:0"`
}

func (GearItem) TableName() string { return "gear_items" }

// ClientLogo is a past-client logo shown on the public site.
type ClientLogo struct {
	gorm.Model
	ArtistID int64  `json:"artistId" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null"`
	LogoURL  string `json:"logoUrl"`
	Position int    `json:"position" gorm:"default:0"`
}

func (ClientLogo) TableName() string { return "client_logos" }

// Review is a client testimonial.
type Review struct {
	gorm.Model
	ArtistID int64  `json:"artistId" gorm:"not null;index"`
	Author   string `json:"author" gorm:"not null"`
	Company  string `json:"company"`
	Quote    string `json:"quote" gorm:"type:text;not null"`
	Rating   int    `json:"rating" gorm:"default:5"`
	Position int    `json:"position" gorm:"default:0"`
}

func (Review) TableName() string { return "reviews" }
