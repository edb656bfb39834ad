package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ApplicationStatus represents the lifecycle status of a vendor application
type ApplicationStatus string

const (
	ApplicationStatusDraft       ApplicationStatus = "draft"
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusUnderReview ApplicationStatus = "under-review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"
)

// statusTransitions is the single source of truth for legal status changes.
// Terminal states (approved, rejected, withdrawn) have no outgoing edges;
// withdrawal from a terminal state is rejected server-side rather than being
// left to client-side button gating.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusDraft: {
		ApplicationStatusSubmitted,
		ApplicationStatusWithdrawn,
	},
	ApplicationStatusSubmitted: {
		ApplicationStatusUnderReview,
		ApplicationStatusApproved,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	},
	ApplicationStatusUnderReview: {
		ApplicationStatusApproved,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	},
	ApplicationStatusApproved:  {},
	ApplicationStatusRejected:  {},
	ApplicationStatusWithdrawn: {},
}

// IsValid reports whether s is a known application status
func (s ApplicationStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible
func (s ApplicationStatus) IsTerminal() bool {
	targets, ok := statusTransitions[s]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether s -> to is in the legal transition table.
// Self-transitions are rejected: a no-op change is an error, not idempotent.
func (s ApplicationStatus) CanTransitionTo(to ApplicationStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// BaseFieldNames are the fixed form fields every market application carries.
// CustomField names may not collide with these.
var BaseFieldNames = []string{
	"businessName",
	"businessDescription",
	"experience",
	"contactEmail",
	"contactPhone",
	"website",
}

// FormValues carries the full value mapping of an application form
type FormValues struct {
	SubmittedData map[string]interface{} `json:"submittedData"`
	CustomFields  map[string]interface{} `json:"customFields"`
}

// Merged returns base and custom values as one mapping for validation
func (v FormValues) Merged() map[string]interface{} {
	merged := make(map[string]interface{}, len(v.SubmittedData)+len(v.CustomFields))
	for k, val := range v.SubmittedData {
		merged[k] = val
	}
	for k, val := range v.CustomFields {
		merged[k] = val
	}
	return merged
}

// DraftSnapshot is the locally persisted shape of an in-progress form
type DraftSnapshot struct {
	SubmittedData map[string]interface{} `json:"submittedData"`
	CustomFields  map[string]interface{} `json:"customFields"`
	SavedAt       time.Time              `json:"savedAt"`
}

// Application represents a vendor's request to participate in a market
type Application struct {
	ID            uuid.UUID              `json:"id"`
	MarketID      uuid.UUID              `json:"marketId"`
	VendorID      uuid.UUID              `json:"vendorId"`
	Status        ApplicationStatus      `json:"status"`
	SubmittedData map[string]interface{} `json:"submittedData"`
	CustomFields  map[string]interface{} `json:"customFields"`
	Notes         null.String            `json:"notes,omitempty"`
	ReviewedAt    *time.Time             `json:"reviewedAt,omitempty"`
	ReviewedBy    *uuid.UUID             `json:"reviewedBy,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`

	// Joins
	Market *Market `json:"market,omitempty"`
}

// ApplicationDraftInput is the request body for draft saves and submissions
type ApplicationDraftInput struct {
	MarketID      uuid.UUID              `json:"marketId" binding:"required"`
	SubmittedData map[string]interface{} `json:"submittedData"`
	CustomFields  map[string]interface{} `json:"customFields"`
}

// Values returns the input as form values
func (in *ApplicationDraftInput) Values() FormValues {
	return FormValues{SubmittedData: in.SubmittedData, CustomFields: in.CustomFields}
}

// UpdateStatusInput is the reviewer request body for status changes
type UpdateStatusInput struct {
	Status ApplicationStatus `json:"status" binding:"required"`
	Reason string            `json:"reason"`
}

// BulkUpdateStatusInput is the reviewer request body for deciding several
// applications at once
type BulkUpdateStatusInput struct {
	ApplicationIDs []uuid.UUID       `json:"applicationIds" binding:"required,min=1"`
	Status         ApplicationStatus `json:"status" binding:"required"`
	Reason         string            `json:"reason"`
}

// WithdrawInput is the vendor request body for withdrawing an application
type WithdrawInput struct {
	Reason string `json:"reason"`
}

// DraftSaveResult reports the outcome of a draft save, including whether the
// local snapshot write succeeded. A failed snapshot write is not fatal; the
// caller keeps its in-memory state and may retry with a manual save.
type DraftSaveResult struct {
	Application    *Application `json:"application"`
	DraftPersisted bool         `json:"draftPersisted"`
}
