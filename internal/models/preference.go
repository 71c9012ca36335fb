package models

import (
	"time"
)

// Preference is one durable UI preference row (theme, accent color).
// Values are stored as JSON so future non-scalar preferences need no
// schema change.
type Preference struct {
	PreferenceKey string `gorm:"primaryKey;size:64"`
	Value         JSON   `gorm:"type:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the table name for Preference
func (Preference) TableName() string {
	return "preferences"
}
