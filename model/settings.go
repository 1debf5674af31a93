package model

import "gorm.io/gorm"

// SiteSettings holds the per-artist public site configuration. One row per
// artist.
type SiteSettings struct {
	gorm.Model
	ArtistID     int64  `json:"artistId" gorm:"uniqueIndex;not null"`
	SiteTitle    string `json:"siteTitle"`
	Tagline      string `json:"tagline"`
	AccentColor  string `json:"accentColor" gorm:"default:#1f6feb"`
	ContactEmail string `json:"contactEmail"`
	ShowGear     bool   `json:"showGear" gorm:"default:true"`
	ShowReviews  bool   `json:"showReviews" gorm:"default:true"`
}

func (SiteSettings) TableName() string { return "site_settings" }
