package models

import "time"

// Timestamps provides the audit columns shared by configuration tables.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
