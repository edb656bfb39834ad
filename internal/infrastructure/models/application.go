package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is the GORM persistence model for vendor applications. The
// value mappings are stored as JSON documents.
type Application struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	MarketID      uuid.UUID `gorm:"type:uuid;not null;index"`
	VendorID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Status        string    `gorm:"not null"`
	SubmittedData string    `gorm:"type:jsonb"`
	CustomFields  string    `gorm:"type:jsonb"`
	Notes         *string
	ReviewedAt    *time.Time
	ReviewedBy    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// TableName overrides the table name
func (Application) TableName() string {
	return "applications"
}
