package entities

import (
	"time"

	"github.com/google/uuid"
)

// FieldType represents the kind of a market-defined application form field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeFile     FieldType = "file"
)

// FieldValidation holds optional length constraints for text-like fields
type FieldValidation struct {
	MinLength int `json:"minLength,omitempty"`
	MaxLength int `json:"maxLength,omitempty"`
}

// CustomField is a market-specific form field beyond the fixed base fields.
// Immutable once fetched for a form session.
type CustomField struct {
	Name       string           `json:"name"`
	Type       FieldType        `json:"type"`
	Required   bool             `json:"required"`
	Options    []string         `json:"options,omitempty"`
	Validation *FieldValidation `json:"validation,omitempty"`
}

// Market represents a market vendors can apply to
type Market struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	Category            string        `json:"category"`
	City                string        `json:"city,omitempty"`
	State               string        `json:"state,omitempty"`
	PromoterID          uuid.UUID     `json:"promoterId"`
	ApplicationDeadline *time.Time    `json:"applicationDeadline,omitempty"`
	ApplicationFields   []CustomField `json:"applicationFields,omitempty"`
	IsActive            bool          `json:"isActive"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
	DeletedAt           *time.Time    `json:"-"`
}

// MarketInput is the request body for creating a market
type MarketInput struct {
	Name                string        `json:"name" binding:"required,min=2"`
	Category            string        `json:"category" binding:"required"`
	City                string        `json:"city"`
	State               string        `json:"state"`
	ApplicationDeadline *time.Time    `json:"applicationDeadline"`
	ApplicationFields   []CustomField `json:"applicationFields"`
}

// AcceptingApplications reports whether the application window is still open
func (m *Market) AcceptingApplications(now time.Time) bool {
	if !m.IsActive {
		return false
	}
	if m.ApplicationDeadline != nil && m.ApplicationDeadline.Before(now) {
		return false
	}
	return true
}
