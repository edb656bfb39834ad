package usecases

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"rumfor-market.backend/internal/domain/entities"
	"rumfor-market.backend/pkg/logger"
)

// DraftStore persists in-progress form snapshots keyed by market and vendor
type DraftStore interface {
	Save(ctx context.Context, key string, snapshot entities.DraftSnapshot) error
	Load(ctx context.Context, key string) (*entities.DraftSnapshot, error)
	Clear(ctx context.Context, key string) error
}

// DefaultAutosaveDelay is the debounce window for draft autosaves
const DefaultAutosaveDelay = 900 * time.Millisecond

// AutosaveScheduler debounces draft writes: rapid edits within the delay
// window collapse into a single persisted write carrying the latest
// snapshot. Store failures are recorded as a transient flag per key and
// never interrupt editing.
type AutosaveScheduler struct {
	store DraftStore
	delay time.Duration

	mu        sync.Mutex
	timers    map[string]*time.Timer
	pending   map[string]entities.DraftSnapshot
	lastSaved map[string]time.Time
	failing   map[string]bool
}

// NewAutosaveScheduler creates a scheduler over the given store
func NewAutosaveScheduler(store DraftStore, delay time.Duration) *AutosaveScheduler {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &AutosaveScheduler{
		store:     store,
		delay:     delay,
		timers:    make(map[string]*time.Timer),
		pending:   make(map[string]entities.DraftSnapshot),
		lastSaved: make(map[string]time.Time),
		failing:   make(map[string]bool),
	}
}

// Schedule records the latest snapshot for the key and (re)starts the
// debounce timer. Each call cancels any not-yet-fired write for the key.
func (s *AutosaveScheduler) Schedule(key string, snapshot entities.DraftSnapshot) {
	if snapshot.SavedAt.IsZero() {
		snapshot.SavedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[key] = snapshot
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(s.delay, func() {
		s.flush(key)
	})
}

// Cancel aborts any pending write for the key without touching what was
// already persisted. Called when the form is abandoned or a submit starts.
func (s *AutosaveScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	delete(s.pending, key)
}

// Flush forces the pending snapshot out immediately (manual save). Unlike
// the timer path the error is returned so the UI can report it.
func (s *AutosaveScheduler) Flush(ctx context.Context, key string) error {
	s.mu.Lock()
	snapshot, ok := s.takePendingLocked(key)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.save(ctx, key, snapshot)
}

// Failing reports whether the last autosave for the key failed. The UI uses
// this to show "autosave failed, use manual save" without losing state.
func (s *AutosaveScheduler) Failing(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failing[key]
}

func (s *AutosaveScheduler) flush(key string) {
	s.mu.Lock()
	snapshot, ok := s.takePendingLocked(key)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.save(context.Background(), key, snapshot); err != nil {
		logger.Warn(context.Background(), "draft autosave failed",
			zap.String("key", key), zap.Error(err))
	}
}

// takePendingLocked removes and returns the pending snapshot, skipping it
// when an equal-or-newer snapshot was already persisted (last writer by
// timestamp wins, never an older one).
func (s *AutosaveScheduler) takePendingLocked(key string) (entities.DraftSnapshot, bool) {
	snapshot, ok := s.pending[key]
	if !ok {
		return entities.DraftSnapshot{}, false
	}
	delete(s.pending, key)
	delete(s.timers, key)
	if last, saved := s.lastSaved[key]; saved && !snapshot.SavedAt.After(last) {
		return entities.DraftSnapshot{}, false
	}
	return snapshot, true
}

func (s *AutosaveScheduler) save(ctx context.Context, key string, snapshot entities.DraftSnapshot) error {
	err := s.store.Save(ctx, key, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failing[key] = true
		return err
	}
	delete(s.failing, key)
	if snapshot.SavedAt.After(s.lastSaved[key]) {
		s.lastSaved[key] = snapshot.SavedAt
	}
	return nil
}
