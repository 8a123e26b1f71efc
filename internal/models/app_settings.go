package models

import "time"

type AppSettings struct {
	ID              uint      `gorm:"primaryKey" json:"id"` // single-row table (ID=1)
	Version         int       `gorm:"not null;default:1" json:"version"`
	Theme           string    `gorm:"not null;default:system" json:"theme"` // "light" | "dark" | "system"
	DefaultProvider string    `gorm:"size:50;not null;default:gemini" json:"defaultProvider"`
	DefaultModelKey string    `gorm:"size:255" json:"defaultModelKey"`
	Streaming       bool      `gorm:"not null" json:"streaming"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
