package models

import "time"

// ModelSetting persists per-model enable toggles for the catalog.
type ModelSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Provider  string    `gorm:"size:50;not null;index:idx_model_provider" json:"provider"`
	ModelKey  string    `gorm:"size:255;not null;uniqueIndex" json:"modelKey"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
