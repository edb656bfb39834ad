package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"rumfor-market.backend/internal/domain/entities"
	domainerrors "rumfor-market.backend/internal/domain/errors"
	"rumfor-market.backend/internal/domain/repositories"
	"rumfor-market.backend/internal/infrastructure/models"
)

// ApplicationRepositoryImpl implements ApplicationRepository
type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepositoryImpl {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(ctx context.Context, app *entities.Application) error {
	m, err := r.toModel(app)
	if err != nil {
		return err
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	app.CreatedAt = m.CreatedAt
	app.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ApplicationRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	var m models.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *ApplicationRepositoryImpl) GetByVendorAndMarket(ctx context.Context, vendorID, marketID uuid.UUID) (*entities.Application, error) {
	var m models.Application
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND market_id = ?", vendorID, marketID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *ApplicationRepositoryImpl) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter repositories.ApplicationFilter) ([]*entities.Application, int, error) {
	return r.list(ctx, "vendor_id = ?", vendorID, filter)
}

func (r *ApplicationRepositoryImpl) ListByMarket(ctx context.Context, marketID uuid.UUID, filter repositories.ApplicationFilter) ([]*entities.Application, int, error) {
	return r.list(ctx, "market_id = ?", marketID, filter)
}

func (r *ApplicationRepositoryImpl) list(ctx context.Context, cond string, id uuid.UUID, filter repositories.ApplicationFilter) ([]*entities.Application, int, error) {
	q := r.db.WithContext(ctx).Model(&models.Application{}).Where(cond, id)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Application
	if err := q.Order("created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	apps := make([]*entities.Application, 0, len(ms))
	for i := range ms {
		app, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	return apps, int(total), nil
}

func (r *ApplicationRepositoryImpl) UpdateData(ctx context.Context, id uuid.UUID, values entities.FormValues) error {
	submitted, err := json.Marshal(values.SubmittedData)
	if err != nil {
		return err
	}
	custom, err := json.Marshal(values.CustomFields)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"submitted_data": string(submitted),
			"custom_fields":  string(custom),
			"updated_at":     time.Now(),
		}).Error
}

func (r *ApplicationRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus, notes string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if notes != "" {
		updates["notes"] = notes
	}
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkReviewed transitions into a decided status and stamps reviewed_at
// exactly once, with the reviewer's notes attached in the same write. When
// the guard filters out the row (another reviewer decided first) the caller
// gets a conflict, not silent success.
func (r *ApplicationRepositoryImpl) MarkReviewed(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus, reviewerID uuid.UUID, notes string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_at": now,
		"reviewed_by": reviewerID,
		"updated_at":  now,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	tx := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND reviewed_at IS NULL", id).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domainerrors.Conflict("application has already been reviewed")
	}
	return nil
}

func (r *ApplicationRepositoryImpl) GetDraftsPastDeadline(ctx context.Context, now time.Time, limit int) ([]*entities.Application, error) {
	var ms []models.Application
	if err := r.db.WithContext(ctx).
		Joins("JOIN markets ON markets.id = applications.market_id").
		Where("applications.status = ? AND markets.application_deadline < ?", entities.ApplicationStatusDraft, now).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	apps := make([]*entities.Application, 0, len(ms))
	for i := range ms {
		app, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (r *ApplicationRepositoryImpl) WithdrawApplications(ctx context.Context, ids []uuid.UUID, notes string) error {
	if len(ids) == 0 {
		return nil
	}
	updates := map[string]interface{}{
		"status":     entities.ApplicationStatusWithdrawn,
		"updated_at": time.Now(),
	}
	if notes != "" {
		updates["notes"] = notes
	}
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id IN ?", ids).
		Updates(updates).Error
}

func (r *ApplicationRepositoryImpl) toModel(app *entities.Application) (*models.Application, error) {
	submitted, err := json.Marshal(app.SubmittedData)
	if err != nil {
		return nil, err
	}
	custom, err := json.Marshal(app.CustomFields)
	if err != nil {
		return nil, err
	}
	m := &models.Application{
		ID:            app.ID,
		MarketID:      app.MarketID,
		VendorID:      app.VendorID,
		Status:        string(app.Status),
		SubmittedData: string(submitted),
		CustomFields:  string(custom),
		ReviewedAt:    app.ReviewedAt,
		ReviewedBy:    app.ReviewedBy,
	}
	if app.Notes.Valid {
		notes := app.Notes.String
		m.Notes = &notes
	}
	return m, nil
}

func (r *ApplicationRepositoryImpl) toEntity(m *models.Application) (*entities.Application, error) {
	app := &entities.Application{
		ID:         m.ID,
		MarketID:   m.MarketID,
		VendorID:   m.VendorID,
		Status:     entities.ApplicationStatus(m.Status),
		ReviewedAt: m.ReviewedAt,
		ReviewedBy: m.ReviewedBy,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Notes != nil {
		app.Notes = null.StringFrom(*m.Notes)
	}
	if m.SubmittedData != "" {
		if err := json.Unmarshal([]byte(m.SubmittedData), &app.SubmittedData); err != nil {
			return nil, err
		}
	}
	if m.CustomFields != "" {
		if err := json.Unmarshal([]byte(m.CustomFields), &app.CustomFields); err != nil {
			return nil, err
		}
	}
	return app, nil
}
