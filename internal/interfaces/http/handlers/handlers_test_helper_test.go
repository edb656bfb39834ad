package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rumfor-market.backend/internal/domain/entities"
	domainerrors "rumfor-market.backend/internal/domain/errors"
	"rumfor-market.backend/internal/domain/repositories"
	"rumfor-market.backend/internal/interfaces/http/middleware"
	"rumfor-market.backend/internal/usecases"
)

// fakeApplicationRepo is an in-memory ApplicationRepository
type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*entities.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[uuid.UUID]*entities.Application)}
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *entities.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	stored := *app
	f.apps[app.ID] = &stored
	return nil
}

func (f *fakeApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (f *fakeApplicationRepo) GetByVendorAndMarket(ctx context.Context, vendorID, marketID uuid.UUID) (*entities.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.apps {
		if app.VendorID == vendorID && app.MarketID == marketID {
			copied := *app
			return &copied, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (f *fakeApplicationRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter repositories.ApplicationFilter) ([]*entities.Application, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Application
	for _, app := range f.apps {
		if app.VendorID == vendorID && (filter.Status == "" || app.Status == filter.Status) {
			copied := *app
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (f *fakeApplicationRepo) ListByMarket(ctx context.Context, marketID uuid.UUID, filter repositories.ApplicationFilter) ([]*entities.Application, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Application
	for _, app := range f.apps {
		if app.MarketID == marketID && (filter.Status == "" || app.Status == filter.Status) {
			copied := *app
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (f *fakeApplicationRepo) UpdateData(ctx context.Context, id uuid.UUID, values entities.FormValues) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	app.SubmittedData = values.SubmittedData
	app.CustomFields = values.CustomFields
	app.UpdatedAt = time.Now()
	return nil
}

func (f *fakeApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	app.Status = status
	if notes != "" {
		app.Notes.SetValid(notes)
	}
	app.UpdatedAt = time.Now()
	return nil
}

func (f *fakeApplicationRepo) MarkReviewed(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus, reviewerID uuid.UUID, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if app.ReviewedAt != nil {
		return domainerrors.Conflict("application has already been reviewed")
	}
	now := time.Now()
	app.Status = status
	app.ReviewedAt = &now
	app.ReviewedBy = &reviewerID
	if notes != "" {
		app.Notes.SetValid(notes)
	}
	return nil
}

func (f *fakeApplicationRepo) GetDraftsPastDeadline(ctx context.Context, now time.Time, limit int) ([]*entities.Application, error) {
	return nil, nil
}

func (f *fakeApplicationRepo) WithdrawApplications(ctx context.Context, ids []uuid.UUID, notes string) error {
	for _, id := range ids {
		if err := f.UpdateStatus(ctx, id, entities.ApplicationStatusWithdrawn, notes); err != nil {
			return err
		}
	}
	return nil
}

// fakeMarketRepo is an in-memory MarketRepository
type fakeMarketRepo struct {
	mu      sync.Mutex
	markets map[uuid.UUID]*entities.Market
}

func newFakeMarketRepo() *fakeMarketRepo {
	return &fakeMarketRepo{markets: make(map[uuid.UUID]*entities.Market)}
}

func (f *fakeMarketRepo) Create(ctx context.Context, market *entities.Market) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *market
	f.markets[market.ID] = &stored
	return nil
}

func (f *fakeMarketRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Market, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	market, ok := f.markets[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	copied := *market
	return &copied, nil
}

func (f *fakeMarketRepo) List(ctx context.Context, category string, limit, offset int) ([]*entities.Market, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Market
	for _, m := range f.markets {
		if m.IsActive && (category == "" || m.Category == category) {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

// memoryDraftStore is an in-memory DraftStore
type memoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]entities.DraftSnapshot
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{drafts: make(map[string]entities.DraftSnapshot)}
}

func (s *memoryDraftStore) Save(ctx context.Context, key string, snapshot entities.DraftSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = snapshot
	return nil
}

func (s *memoryDraftStore) Load(ctx context.Context, key string) (*entities.DraftSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.drafts[key]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (s *memoryDraftStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

// testEnv wires real usecases over the in-memory fakes behind a gin router.
// Authentication is replaced by a shim that injects the caller's identity.
type testEnv struct {
	router     *gin.Engine
	appRepo    *fakeApplicationRepo
	marketRepo *fakeMarketRepo
	store      *memoryDraftStore

	market     *entities.Market
	promoterID uuid.UUID
	vendorID   uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	appRepo := newFakeApplicationRepo()
	marketRepo := newFakeMarketRepo()
	store := newMemoryDraftStore()
	scheduler := usecases.NewAutosaveScheduler(store, time.Hour)

	applicationUsecase := usecases.NewApplicationUsecase(appRepo, marketRepo, store, scheduler)
	marketUsecase := usecases.NewMarketUsecase(marketRepo)

	applicationHandler := NewApplicationHandler(applicationUsecase)
	marketHandler := NewMarketHandler(marketUsecase)

	env := &testEnv{
		appRepo:    appRepo,
		marketRepo: marketRepo,
		store:      store,
		promoterID: uuid.New(),
		vendorID:   uuid.New(),
	}

	env.market = &entities.Market{
		ID:         uuid.New(),
		Name:       "Downtown Farmers Market",
		Category:   "farmers-market",
		PromoterID: env.promoterID,
		IsActive:   true,
		ApplicationFields: []entities.CustomField{
			{Name: "boothSize", Type: entities.FieldTypeSelect, Required: true, Options: []string{"small", "large"}},
		},
	}
	if err := marketRepo.Create(context.Background(), env.market); err != nil {
		t.Fatal(err)
	}

	r := gin.New()

	// test identity shim standing in for the JWT auth middleware
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				c.Set(middleware.UserIDKey, id)
			}
		}
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(middleware.UserRoleKey, role)
		}
		c.Next()
	})

	v1 := r.Group("/api/v1")

	markets := v1.Group("/markets")
	markets.GET("", marketHandler.List)
	markets.POST("", marketHandler.Create)
	markets.GET("/:id", marketHandler.Get)
	markets.GET("/:id/form", marketHandler.GetFormSchema)
	markets.GET("/:id/draft", applicationHandler.LoadDraft)
	markets.DELETE("/:id/draft", applicationHandler.DiscardDraft)
	markets.GET("/:id/applications", applicationHandler.ListByMarket)

	applications := v1.Group("/applications")
	applications.PUT("/draft", applicationHandler.SaveDraft)
	applications.POST("/draft/autosave", applicationHandler.Autosave)
	applications.POST("/validate-uploads", applicationHandler.ValidateUploads)
	applications.POST("", applicationHandler.Submit)
	applications.GET("", applicationHandler.ListMine)
	applications.GET("/:id", applicationHandler.Get)
	applications.POST("/:id/withdraw", applicationHandler.Withdraw)
	applications.PATCH("/:id/status", applicationHandler.UpdateStatus)
	applications.PATCH("/bulk-status", applicationHandler.BulkUpdateStatus)

	env.router = r
	return env
}

// do performs a request with the given identity injected the way the auth
// middleware would
func (env *testEnv) do(method, path, body string, userID uuid.UUID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-Test-User", userID.String())
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}
