package repositories

import (
	"context"

	"github.com/google/uuid"
	"rumfor-market.backend/internal/domain/entities"
)

// MarketRepository interface. Markets are owned externally; the application
// core only reads them (Create exists for seeding and admin tooling).
type MarketRepository interface {
	Create(ctx context.Context, market *entities.Market) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Market, error)
	List(ctx context.Context, category string, limit, offset int) ([]*entities.Market, int, error)
}
