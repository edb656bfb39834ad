package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"rumfor-market.backend/internal/domain/entities"
	domainerrors "rumfor-market.backend/internal/domain/errors"
	"rumfor-market.backend/internal/domain/repositories"
	"rumfor-market.backend/pkg/utils"
)

// RoleAdmin may review any market's applications
const RoleAdmin = "admin"

// ApplicationUsecase sequences draft saves, submissions and reviewer
// decisions against the application repository, reconciling local draft
// snapshots with the authoritative record.
type ApplicationUsecase struct {
	appRepo    repositories.ApplicationRepository
	marketRepo repositories.MarketRepository
	drafts     DraftStore
	autosave   *AutosaveScheduler

	// one in-flight submit per draft key; a flag, not a lock, since a
	// single actor edits one application at a time
	inflight sync.Map
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo repositories.ApplicationRepository,
	marketRepo repositories.MarketRepository,
	drafts DraftStore,
	autosave *AutosaveScheduler,
) *ApplicationUsecase {
	return &ApplicationUsecase{
		appRepo:    appRepo,
		marketRepo: marketRepo,
		drafts:     drafts,
		autosave:   autosave,
	}
}

// DraftKey builds the draft store key for a market/vendor pair
func DraftKey(marketID, vendorID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", marketID, vendorID)
}

// SaveDraft creates or updates the vendor's draft record for a market and
// persists a local snapshot with a fresh savedAt. A failed snapshot write is
// reported through DraftPersisted rather than failing the operation.
func (u *ApplicationUsecase) SaveDraft(ctx context.Context, vendorID uuid.UUID, input *entities.ApplicationDraftInput) (*entities.DraftSaveResult, error) {
	key := DraftKey(input.MarketID, vendorID)
	if _, busy := u.inflight.Load(key); busy {
		return nil, domainerrors.Conflict("a submission is in progress for this application")
	}

	market, err := u.marketRepo.GetByID(ctx, input.MarketID)
	if err != nil {
		return nil, err
	}
	if !market.AcceptingApplications(time.Now()) {
		return nil, domainerrors.BadRequest("application deadline has passed")
	}

	// a manual save supersedes any debounced write still in flight
	u.autosave.Cancel(key)

	values := input.Values()
	app, err := u.appRepo.GetByVendorAndMarket(ctx, vendorID, input.MarketID)
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		app = &entities.Application{
			ID:            uuid.New(),
			MarketID:      input.MarketID,
			VendorID:      vendorID,
			Status:        entities.ApplicationStatusDraft,
			SubmittedData: values.SubmittedData,
			CustomFields:  values.CustomFields,
		}
		if err := u.appRepo.Create(ctx, app); err != nil {
			return nil, domainerrors.Transient(err)
		}
	case err != nil:
		return nil, domainerrors.Transient(err)
	default:
		if app.Status != entities.ApplicationStatusDraft {
			return nil, domainerrors.Conflict("application has already been submitted")
		}
		if err := u.appRepo.UpdateData(ctx, app.ID, values); err != nil {
			return nil, domainerrors.Transient(err)
		}
		app.SubmittedData = values.SubmittedData
		app.CustomFields = values.CustomFields
	}

	snapshot := entities.DraftSnapshot{
		SubmittedData: values.SubmittedData,
		CustomFields:  values.CustomFields,
		SavedAt:       time.Now(),
	}
	persisted := true
	if err := u.drafts.Save(ctx, key, snapshot); err != nil {
		// non-fatal: the record is saved, only the local snapshot is stale
		persisted = false
	}
	return &entities.DraftSaveResult{Application: app, DraftPersisted: persisted}, nil
}

// Autosave schedules a debounced snapshot write for the vendor's draft.
// Rapid edits collapse into one write; the snapshot lands after the debounce
// window unless superseded, cancelled or overtaken by a submit. The returned
// failing flag tells the client whether the previous autosave for this draft
// failed and a manual save is advised.
func (u *ApplicationUsecase) Autosave(ctx context.Context, vendorID uuid.UUID, input *entities.ApplicationDraftInput) (failing bool, err error) {
	key := DraftKey(input.MarketID, vendorID)
	if _, busy := u.inflight.Load(key); busy {
		return false, domainerrors.Conflict("a submission is in progress for this application")
	}

	values := input.Values()
	u.autosave.Schedule(key, entities.DraftSnapshot{
		SubmittedData: values.SubmittedData,
		CustomFields:  values.CustomFields,
		SavedAt:       time.Now(),
	})
	return u.autosave.Failing(key), nil
}

// LoadDraft returns the stored snapshot for a market/vendor pair, or nil
// when none exists. Authoritative data wins: once the application left the
// draft status the snapshot is ignored.
func (u *ApplicationUsecase) LoadDraft(ctx context.Context, vendorID, marketID uuid.UUID) (*entities.DraftSnapshot, error) {
	app, err := u.appRepo.GetByVendorAndMarket(ctx, vendorID, marketID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.Transient(err)
	}
	if app != nil && app.Status != entities.ApplicationStatusDraft {
		return nil, nil
	}
	return u.drafts.Load(ctx, DraftKey(marketID, vendorID))
}

// DiscardDraft drops the snapshot and, when a draft record exists, withdraws
// it. Clearing an absent draft is a no-op.
func (u *ApplicationUsecase) DiscardDraft(ctx context.Context, vendorID, marketID uuid.UUID) error {
	key := DraftKey(marketID, vendorID)
	u.autosave.Cancel(key)
	if err := u.drafts.Clear(ctx, key); err != nil {
		return err
	}

	app, err := u.appRepo.GetByVendorAndMarket(ctx, vendorID, marketID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return domainerrors.Transient(err)
	}
	if app.Status != entities.ApplicationStatusDraft {
		return nil
	}
	return u.appRepo.UpdateStatus(ctx, app.ID, entities.ApplicationStatusWithdrawn, "")
}

// Submit validates the full field set, writes the record, transitions it to
// submitted and clears the local draft. A record already past draft status,
// or a submit already in flight for the same key, is a conflict.
func (u *ApplicationUsecase) Submit(ctx context.Context, vendorID uuid.UUID, input *entities.ApplicationDraftInput) (*entities.Application, error) {
	key := DraftKey(input.MarketID, vendorID)
	if _, loaded := u.inflight.LoadOrStore(key, struct{}{}); loaded {
		return nil, domainerrors.Conflict("a submission is already in progress")
	}
	defer u.inflight.Delete(key)

	// a scheduled autosave must not land after the submit
	u.autosave.Cancel(key)

	market, err := u.marketRepo.GetByID(ctx, input.MarketID)
	if err != nil {
		return nil, err
	}
	if !market.AcceptingApplications(time.Now()) {
		return nil, domainerrors.BadRequest("application deadline has passed")
	}

	validator, err := CompileFieldSchema(market.ApplicationFields)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	values := input.Values()
	if fieldErrs := validator.Validate(values.Merged()); len(fieldErrs) > 0 {
		return nil, domainerrors.NewValidationError(fieldErrs)
	}

	app, err := u.appRepo.GetByVendorAndMarket(ctx, vendorID, input.MarketID)
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		app = &entities.Application{
			ID:            uuid.New(),
			MarketID:      input.MarketID,
			VendorID:      vendorID,
			Status:        entities.ApplicationStatusDraft,
			SubmittedData: values.SubmittedData,
			CustomFields:  values.CustomFields,
		}
		if err := u.appRepo.Create(ctx, app); err != nil {
			return nil, domainerrors.Transient(err)
		}
	case err != nil:
		return nil, domainerrors.Transient(err)
	default:
		if app.Status != entities.ApplicationStatusDraft {
			return nil, domainerrors.Conflict("application has already been submitted")
		}
		if err := u.appRepo.UpdateData(ctx, app.ID, values); err != nil {
			return nil, domainerrors.Transient(err)
		}
		app.SubmittedData = values.SubmittedData
		app.CustomFields = values.CustomFields
	}

	if !app.Status.CanTransitionTo(entities.ApplicationStatusSubmitted) {
		return nil, domainerrors.NewIllegalTransition(string(app.Status), string(entities.ApplicationStatusSubmitted))
	}
	if err := u.appRepo.UpdateStatus(ctx, app.ID, entities.ApplicationStatusSubmitted, ""); err != nil {
		return nil, domainerrors.Transient(err)
	}
	app.Status = entities.ApplicationStatusSubmitted

	// exactly once, synchronous with the successful submission; a failed
	// clear only risks a stale snapshot, which LoadDraft already ignores
	_ = u.drafts.Clear(ctx, key)

	applicationsSubmitted.Inc()
	statusTransitionsTotal.WithLabelValues(string(entities.ApplicationStatusDraft), string(entities.ApplicationStatusSubmitted)).Inc()
	return app, nil
}

// Withdraw moves the vendor's own application to withdrawn from any
// non-terminal status
func (u *ApplicationUsecase) Withdraw(ctx context.Context, vendorID, appID uuid.UUID, reason string) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.VendorID != vendorID {
		return nil, domainerrors.Forbidden("you can only withdraw your own applications")
	}
	if !app.Status.CanTransitionTo(entities.ApplicationStatusWithdrawn) {
		return nil, domainerrors.NewIllegalTransition(string(app.Status), string(entities.ApplicationStatusWithdrawn))
	}

	notes := ""
	if reason != "" {
		notes = "Withdrawn: " + reason
	}
	if err := u.appRepo.UpdateStatus(ctx, app.ID, entities.ApplicationStatusWithdrawn, notes); err != nil {
		return nil, domainerrors.Transient(err)
	}
	statusTransitionsTotal.WithLabelValues(string(app.Status), string(entities.ApplicationStatusWithdrawn)).Inc()
	app.Status = entities.ApplicationStatusWithdrawn
	if notes != "" {
		app.Notes.SetValid(strings.TrimSpace(notes))
	}

	_ = u.drafts.Clear(ctx, DraftKey(app.MarketID, vendorID))
	return app, nil
}

// UpdateStatus applies a reviewer decision. under-review marks the start of
// review; approved/rejected stamp reviewedAt exactly once, with the reason
// attached atomically.
func (u *ApplicationUsecase) UpdateStatus(ctx context.Context, reviewerID uuid.UUID, role string, appID uuid.UUID, input *entities.UpdateStatusInput) (*entities.Application, error) {
	if !input.Status.IsValid() {
		return nil, domainerrors.BadRequest("unknown application status")
	}

	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := u.authorizeReviewer(ctx, reviewerID, role, app.MarketID); err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(input.Status) {
		return nil, domainerrors.NewIllegalTransition(string(app.Status), string(input.Status))
	}

	from := app.Status
	switch input.Status {
	case entities.ApplicationStatusApproved, entities.ApplicationStatusRejected:
		if err := u.appRepo.MarkReviewed(ctx, app.ID, input.Status, reviewerID, input.Reason); err != nil {
			// another reviewer decided between the read and the write; the
			// client must reload authoritative state
			if errors.Is(err, domainerrors.ErrConflict) {
				return nil, err
			}
			return nil, domainerrors.Transient(err)
		}
		now := time.Now()
		app.ReviewedAt = &now
		app.ReviewedBy = &reviewerID
	case entities.ApplicationStatusUnderReview:
		if err := u.appRepo.UpdateStatus(ctx, app.ID, input.Status, ""); err != nil {
			return nil, domainerrors.Transient(err)
		}
	default:
		// vendors own draft/submitted/withdrawn moves
		return nil, domainerrors.Forbidden("reviewers may only review applications")
	}

	statusTransitionsTotal.WithLabelValues(string(from), string(input.Status)).Inc()
	app.Status = input.Status
	if input.Reason != "" {
		app.Notes.SetValid(input.Reason)
	}
	return app, nil
}

// BulkUpdateStatusResult reports per-application outcomes of a bulk decision
type BulkUpdateStatusResult struct {
	Updated []uuid.UUID          `json:"updated"`
	Failed  map[uuid.UUID]string `json:"failed,omitempty"`
}

// BulkUpdateStatus applies the same reviewer decision to several
// applications. Every application passes through the same authorization and
// transition guards as a single update; a failure is recorded per ID and
// never aborts the rest of the batch.
func (u *ApplicationUsecase) BulkUpdateStatus(ctx context.Context, reviewerID uuid.UUID, role string, input *entities.BulkUpdateStatusInput) (*BulkUpdateStatusResult, error) {
	if !input.Status.IsValid() {
		return nil, domainerrors.BadRequest("unknown application status")
	}

	result := &BulkUpdateStatusResult{Updated: make([]uuid.UUID, 0, len(input.ApplicationIDs))}
	for _, id := range input.ApplicationIDs {
		_, err := u.UpdateStatus(ctx, reviewerID, role, id, &entities.UpdateStatusInput{
			Status: input.Status,
			Reason: input.Reason,
		})
		if err != nil {
			if result.Failed == nil {
				result.Failed = make(map[uuid.UUID]string)
			}
			result.Failed[id] = err.Error()
			continue
		}
		result.Updated = append(result.Updated, id)
	}
	return result, nil
}

// GetApplication returns a single application visible to the requester
func (u *ApplicationUsecase) GetApplication(ctx context.Context, requesterID uuid.UUID, role string, appID uuid.UUID) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.VendorID == requesterID || role == RoleAdmin {
		return app, nil
	}
	if err := u.authorizeReviewer(ctx, requesterID, role, app.MarketID); err != nil {
		return nil, err
	}
	return app, nil
}

// ListMyApplications returns the vendor's applications with pagination
func (u *ApplicationUsecase) ListMyApplications(ctx context.Context, vendorID uuid.UUID, status entities.ApplicationStatus, page, limit int) ([]*entities.Application, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	apps, total, err := u.appRepo.ListByVendor(ctx, vendorID, repositories.ApplicationFilter{
		Status: status,
		Limit:  params.Limit,
		Offset: params.CalculateOffset(),
	})
	if err != nil {
		return nil, utils.PaginationMeta{}, domainerrors.Transient(err)
	}
	return apps, utils.CalculateMeta(int64(total), params.Page, params.Limit), nil
}

// ListMarketApplications returns a market's applications for its reviewer
func (u *ApplicationUsecase) ListMarketApplications(ctx context.Context, reviewerID uuid.UUID, role string, marketID uuid.UUID, status entities.ApplicationStatus, page, limit int) ([]*entities.Application, utils.PaginationMeta, error) {
	if err := u.authorizeReviewer(ctx, reviewerID, role, marketID); err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	params := utils.GetPaginationParams(page, limit)
	apps, total, err := u.appRepo.ListByMarket(ctx, marketID, repositories.ApplicationFilter{
		Status: status,
		Limit:  params.Limit,
		Offset: params.CalculateOffset(),
	})
	if err != nil {
		return nil, utils.PaginationMeta{}, domainerrors.Transient(err)
	}
	return apps, utils.CalculateMeta(int64(total), params.Page, params.Limit), nil
}

// authorizeReviewer requires the requester to promote the market or be an
// admin
func (u *ApplicationUsecase) authorizeReviewer(ctx context.Context, reviewerID uuid.UUID, role string, marketID uuid.UUID) error {
	if role == RoleAdmin {
		return nil
	}
	market, err := u.marketRepo.GetByID(ctx, marketID)
	if err != nil {
		return err
	}
	if market.PromoterID != reviewerID {
		return domainerrors.Forbidden("you can only review applications for your markets")
	}
	return nil
}
