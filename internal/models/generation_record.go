package models

import "time"

// GenerationRecord is one row of generation history. The API key is never stored.
type GenerationRecord struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SessionID    string     `gorm:"size:36;not null;uniqueIndex" json:"sessionId"`
	Provider     string     `gorm:"size:50;not null;index" json:"provider"`
	Model        string     `gorm:"size:255;not null" json:"model"`
	Prompt       string     `gorm:"type:text;not null" json:"prompt"`
	Target       string     `gorm:"size:20;not null" json:"target"` // "selection" | "document"
	Range        string     `gorm:"size:64" json:"range,omitempty"`
	State        string     `gorm:"size:20;not null;index" json:"state"`
	OutputLength int        `gorm:"not null;default:0" json:"outputLength"`
	Strategy     string     `gorm:"size:32" json:"strategy,omitempty"`
	Error        string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}
