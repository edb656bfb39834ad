package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"rumfor-market.backend/internal/domain/entities"
	domainerrors "rumfor-market.backend/internal/domain/errors"
	"rumfor-market.backend/internal/domain/repositories"
	"rumfor-market.backend/pkg/utils"
)

// MarketUsecase handles the market catalog and per-market form schemas
type MarketUsecase struct {
	marketRepo repositories.MarketRepository
}

// NewMarketUsecase creates a new market usecase
func NewMarketUsecase(marketRepo repositories.MarketRepository) *MarketUsecase {
	return &MarketUsecase{marketRepo: marketRepo}
}

// FormSchema is the renderable description of a market's application form
type FormSchema struct {
	Fields []FieldSpec  `json:"fields"`
	Steps  []WizardStep `json:"steps"`
}

// CreateMarket creates a market owned by the promoter. The custom field set
// is compiled up front so a broken form definition is rejected at creation
// time, not discovered by the first applicant.
func (u *MarketUsecase) CreateMarket(ctx context.Context, promoterID uuid.UUID, input *entities.MarketInput) (*entities.Market, error) {
	if _, err := CompileFieldSchema(input.ApplicationFields); err != nil {
		return nil, domainerrors.BadRequest(err.Error())
	}

	market := &entities.Market{
		ID:                  uuid.New(),
		Name:                input.Name,
		Category:            input.Category,
		City:                input.City,
		State:               input.State,
		PromoterID:          promoterID,
		ApplicationDeadline: input.ApplicationDeadline,
		ApplicationFields:   input.ApplicationFields,
		IsActive:            true,
	}
	if err := u.marketRepo.Create(ctx, market); err != nil {
		return nil, domainerrors.Transient(err)
	}
	return market, nil
}

// GetMarket returns a single market by ID
func (u *MarketUsecase) GetMarket(ctx context.Context, id uuid.UUID) (*entities.Market, error) {
	return u.marketRepo.GetByID(ctx, id)
}

// ListMarkets returns markets filtered by category with pagination
func (u *MarketUsecase) ListMarkets(ctx context.Context, category string, page, limit int) ([]*entities.Market, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	markets, total, err := u.marketRepo.List(ctx, category, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, domainerrors.Transient(err)
	}
	return markets, utils.CalculateMeta(int64(total), params.Page, params.Limit), nil
}

// GetFormSchema compiles the market's application form into the field specs
// and step layout the form client renders. The schema is derived from the
// market record at request time; it does not change under an open session.
func (u *MarketUsecase) GetFormSchema(ctx context.Context, marketID uuid.UUID) (*FormSchema, error) {
	market, err := u.marketRepo.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !market.AcceptingApplications(time.Now()) {
		return nil, domainerrors.BadRequest("market is not accepting applications")
	}

	validator, err := CompileFieldSchema(market.ApplicationFields)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return &FormSchema{
		Fields: validator.Specs(),
		Steps:  DefaultWizardSteps(validator),
	}, nil
}
