package models

import (
	"time"

	"github.com/google/uuid"
)

// Market is the GORM persistence model for markets. ApplicationFields holds
// the CustomField list as a JSON document.
type Market struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	Name                string    `gorm:"not null"`
	Category            string
	City                string
	State               string
	PromoterID          uuid.UUID `gorm:"type:uuid;not null;index"`
	ApplicationDeadline *time.Time
	ApplicationFields   string `gorm:"type:jsonb"`
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// TableName overrides the table name
func (Market) TableName() string {
	return "markets"
}
