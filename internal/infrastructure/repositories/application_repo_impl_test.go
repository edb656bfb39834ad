package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rumfor-market.backend/internal/domain/entities"
	domainerrors "rumfor-market.backend/internal/domain/errors"
	"rumfor-market.backend/internal/domain/repositories"
)

func TestApplicationRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)
	app := seedApplication(t, db, market.ID, entities.ApplicationStatusDraft)

	got, err := repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.VendorID, got.VendorID)
	assert.Equal(t, entities.ApplicationStatusDraft, got.Status)
	assert.Equal(t, "Bread & Butter", got.SubmittedData["businessName"])
	assert.Equal(t, "small", got.CustomFields["boothSize"])
	assert.False(t, got.CreatedAt.IsZero())
}

func TestApplicationRepositoryGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestApplicationRepositoryGetByVendorAndMarket(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)
	app := seedApplication(t, db, market.ID, entities.ApplicationStatusDraft)

	got, err := repo.GetByVendorAndMarket(context.Background(), app.VendorID, market.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	_, err = repo.GetByVendorAndMarket(context.Background(), uuid.New(), market.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestApplicationRepositoryUpdateData(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)
	app := seedApplication(t, db, market.ID, entities.ApplicationStatusDraft)

	err := repo.UpdateData(context.Background(), app.ID, entities.FormValues{
		SubmittedData: map[string]interface{}{"businessName": "Renamed Bakery"},
		CustomFields:  map[string]interface{}{"boothSize": "large"},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Bakery", got.SubmittedData["businessName"])
	assert.Equal(t, "large", got.CustomFields["boothSize"])
}

func TestApplicationRepositoryUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)
	app := seedApplication(t, db, market.ID, entities.ApplicationStatusDraft)

	require.NoError(t, repo.UpdateStatus(context.Background(), app.ID, entities.ApplicationStatusSubmitted, ""))

	got, err := repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ApplicationStatusSubmitted, got.Status)
	assert.False(t, got.Notes.Valid)
}

func TestApplicationRepositoryUpdateStatusWithNotes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)
	app := seedApplication(t, db, market.ID, entities.ApplicationStatusSubmitted)

	require.NoError(t, repo.UpdateStatus(context.Background(), app.ID, entities.ApplicationStatusWithdrawn, "Withdrawn: moving away"))

	got, err := repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Withdrawn: moving away", got.Notes.String)
}

func TestApplicationRepositoryMarkReviewedStampsOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)
	app := seedApplication(t, db, market.ID, entities.ApplicationStatusUnderReview)
	reviewerID := uuid.New()

	require.NoError(t, repo.MarkReviewed(context.Background(), app.ID, entities.ApplicationStatusApproved, reviewerID, "welcome aboard"))

	got, err := repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ApplicationStatusApproved, got.Status)
	require.NotNil(t, got.ReviewedAt)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, reviewerID, *got.ReviewedBy)
	assert.Equal(t, "welcome aboard", got.Notes.String)
	firstReviewedAt := *got.ReviewedAt

	// a second decision does not move the stamp and surfaces as a conflict,
	// never as silent success
	err = repo.MarkReviewed(context.Background(), app.ID, entities.ApplicationStatusRejected, uuid.New(), "changed my mind")
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))

	got, err = repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ApplicationStatusApproved, got.Status)
	assert.True(t, got.ReviewedAt.Equal(firstReviewedAt))
	assert.Equal(t, reviewerID, *got.ReviewedBy)
}

func TestApplicationRepositoryListByVendor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)
	other := seedMarket(t, db, nil)

	vendorID := uuid.New()
	for i, status := range []entities.ApplicationStatus{
		entities.ApplicationStatusDraft,
		entities.ApplicationStatusSubmitted,
	} {
		marketID := market.ID
		if i == 1 {
			marketID = other.ID
		}
		app := &entities.Application{
			ID:       uuid.New(),
			MarketID: marketID,
			VendorID: vendorID,
			Status:   status,
		}
		require.NoError(t, repo.Create(context.Background(), app))
	}
	seedApplication(t, db, market.ID, entities.ApplicationStatusDraft) // someone else

	apps, total, err := repo.ListByVendor(context.Background(), vendorID, repositories.ApplicationFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, apps, 2)

	apps, total, err = repo.ListByVendor(context.Background(), vendorID, repositories.ApplicationFilter{
		Status: entities.ApplicationStatusSubmitted,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, entities.ApplicationStatusSubmitted, apps[0].Status)
}

func TestApplicationRepositoryListByMarketPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)

	for i := 0; i < 5; i++ {
		seedApplication(t, db, market.ID, entities.ApplicationStatusSubmitted)
	}

	apps, total, err := repo.ListByMarket(context.Background(), market.ID, repositories.ApplicationFilter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, apps, 2)

	apps, _, err = repo.ListByMarket(context.Background(), market.ID, repositories.ApplicationFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestApplicationRepositoryDraftsPastDeadline(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	closedMarket := seedMarket(t, db, &past)
	openMarket := seedMarket(t, db, &future)

	expired := seedApplication(t, db, closedMarket.ID, entities.ApplicationStatusDraft)
	seedApplication(t, db, closedMarket.ID, entities.ApplicationStatusSubmitted) // not a draft
	seedApplication(t, db, openMarket.ID, entities.ApplicationStatusDraft)       // still open

	drafts, err := repo.GetDraftsPastDeadline(context.Background(), time.Now(), 100)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, expired.ID, drafts[0].ID)
}

func TestApplicationRepositoryWithdrawApplications(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	market := seedMarket(t, db, nil)

	a := seedApplication(t, db, market.ID, entities.ApplicationStatusDraft)
	b := seedApplication(t, db, market.ID, entities.ApplicationStatusDraft)
	untouched := seedApplication(t, db, market.ID, entities.ApplicationStatusDraft)

	require.NoError(t, repo.WithdrawApplications(context.Background(), []uuid.UUID{a.ID, b.ID}, "Withdrawn: application deadline passed"))

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		got, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, entities.ApplicationStatusWithdrawn, got.Status)
		assert.Equal(t, "Withdrawn: application deadline passed", got.Notes.String)
	}

	got, err := repo.GetByID(context.Background(), untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ApplicationStatusDraft, got.Status)

	// empty batch is a no-op
	require.NoError(t, repo.WithdrawApplications(context.Background(), nil, ""))
}
