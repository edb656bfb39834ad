package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"rumfor-market.backend/internal/domain/entities"
	"rumfor-market.backend/internal/domain/repositories"
)

// MockApplicationRepository is a testify mock for ApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *entities.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Application), args.Error(1)
}

func (m *MockApplicationRepository) GetByVendorAndMarket(ctx context.Context, vendorID, marketID uuid.UUID) (*entities.Application, error) {
	args := m.Called(ctx, vendorID, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Application), args.Error(1)
}

func (m *MockApplicationRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter repositories.ApplicationFilter) ([]*entities.Application, int, error) {
	args := m.Called(ctx, vendorID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Application), args.Int(1), args.Error(2)
}

func (m *MockApplicationRepository) ListByMarket(ctx context.Context, marketID uuid.UUID, filter repositories.ApplicationFilter) ([]*entities.Application, int, error) {
	args := m.Called(ctx, marketID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Application), args.Int(1), args.Error(2)
}

func (m *MockApplicationRepository) UpdateData(ctx context.Context, id uuid.UUID, values entities.FormValues) error {
	args := m.Called(ctx, id, values)
	return args.Error(0)
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus, notes string) error {
	args := m.Called(ctx, id, status, notes)
	return args.Error(0)
}

func (m *MockApplicationRepository) MarkReviewed(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus, reviewerID uuid.UUID, notes string) error {
	args := m.Called(ctx, id, status, reviewerID, notes)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetDraftsPastDeadline(ctx context.Context, now time.Time, limit int) ([]*entities.Application, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Application), args.Error(1)
}

func (m *MockApplicationRepository) WithdrawApplications(ctx context.Context, ids []uuid.UUID, notes string) error {
	args := m.Called(ctx, ids, notes)
	return args.Error(0)
}

// MockMarketRepository is a testify mock for MarketRepository
type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) Create(ctx context.Context, market *entities.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

func (m *MockMarketRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Market, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Market), args.Error(1)
}

func (m *MockMarketRepository) List(ctx context.Context, category string, limit, offset int) ([]*entities.Market, int, error) {
	args := m.Called(ctx, category, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Market), args.Int(1), args.Error(2)
}

// memoryDraftStore is an in-memory DraftStore for scheduler and orchestrator
// tests. failNext makes the next Save call fail once.
type memoryDraftStore struct {
	mu       sync.Mutex
	drafts   map[string]entities.DraftSnapshot
	saves    int
	clears   int
	failNext bool
	failAll  bool
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{drafts: make(map[string]entities.DraftSnapshot)}
}

func (s *memoryDraftStore) Save(ctx context.Context, key string, snapshot entities.DraftSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failNext || s.failAll {
		s.failNext = false
		return context.DeadlineExceeded
	}
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
	s.clears++
	delete(s.drafts, key)
	return nil
}

func (s *memoryDraftStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *memoryDraftStore) get(key string) (entities.DraftSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.drafts[key]
	return snapshot, ok
}
