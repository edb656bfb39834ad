package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rumfor-market.backend/internal/domain/entities"
	domainerrors "rumfor-market.backend/internal/domain/errors"
	"rumfor-market.backend/internal/infrastructure/models"
)

// MarketRepositoryImpl implements MarketRepository
type MarketRepositoryImpl struct {
	db *gorm.DB
}

func NewMarketRepository(db *gorm.DB) *MarketRepositoryImpl {
	return &MarketRepositoryImpl{db: db}
}

func (r *MarketRepositoryImpl) Create(ctx context.Context, market *entities.Market) error {
	fields, err := json.Marshal(market.ApplicationFields)
	if err != nil {
		return err
	}
	now := time.Now()
	m := &models.Market{
		ID:                  market.ID,
		Name:                market.Name,
		Category:            market.Category,
		City:                market.City,
		State:               market.State,
		PromoterID:          market.PromoterID,
		ApplicationDeadline: market.ApplicationDeadline,
		ApplicationFields:   string(fields),
		IsActive:            market.IsActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MarketRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Market, error) {
	var m models.Market
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *MarketRepositoryImpl) List(ctx context.Context, category string, limit, offset int) ([]*entities.Market, int, error) {
	q := r.db.WithContext(ctx).Model(&models.Market{}).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Market
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	markets := make([]*entities.Market, 0, len(ms))
	for i := range ms {
		market, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		markets = append(markets, market)
	}
	return markets, int(total), nil
}

func (r *MarketRepositoryImpl) toEntity(m *models.Market) (*entities.Market, error) {
	market := &entities.Market{
		ID:                  m.ID,
		Name:                m.Name,
		Category:            m.Category,
		City:                m.City,
		State:               m.State,
		PromoterID:          m.PromoterID,
		ApplicationDeadline: m.ApplicationDeadline,
		IsActive:            m.IsActive,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.ApplicationFields != "" {
		if err := json.Unmarshal([]byte(m.ApplicationFields), &market.ApplicationFields); err != nil {
			return nil, err
		}
	}
	return market, nil
}
