package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"rumfor-market.backend/internal/domain/entities"
)

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	Status entities.ApplicationStatus
	Limit  int
	Offset int
}

// ApplicationRepository interface
type ApplicationRepository interface {
	Create(ctx context.Context, app *entities.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error)
	GetByVendorAndMarket(ctx context.Context, vendorID, marketID uuid.UUID) (*entities.Application, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, filter ApplicationFilter) ([]*entities.Application, int, error)
	ListByMarket(ctx context.Context, marketID uuid.UUID, filter ApplicationFilter) ([]*entities.Application, int, error)
	UpdateData(ctx context.Context, id uuid.UUID, values entities.FormValues) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus, notes string) error
	MarkReviewed(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus, reviewerID uuid.UUID, notes string) error
	GetDraftsPastDeadline(ctx context.Context, now time.Time, limit int) ([]*entities.Application, error)
	WithdrawApplications(ctx context.Context, ids []uuid.UUID, notes string) error
}
