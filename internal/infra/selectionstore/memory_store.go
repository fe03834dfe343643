package selectionstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/foodeat/internal/domain/selection"
)

type record struct {
	payload   selection.Selection
	expiresAt time.Time
}

// MemoryStore keeps selections in process memory for tests and single-node dev.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]record
	now   func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]record), now: time.Now}
}

// Get implements selection.Store.
func (s *MemoryStore) Get(_ context.Context, viewerID string) (selection.Selection, bool, error) {
	s.mu.RLock()
	rec, ok := s.items[viewerID]
	s.mu.RUnlock()
	if !ok {
		return selection.Selection{}, false, nil
	}
	if !rec.expiresAt.IsZero() && rec.expiresAt.Before(s.now()) {
		s.mu.Lock()
		delete(s.items, viewerID)
		s.mu.Unlock()
		return selection.Selection{}, false, nil
	}
	return rec.payload, true, nil
}

// Save stores the selection with an optional TTL.
func (s *MemoryStore) Save(_ context.Context, viewerID string, sel selection.Selection, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.items[viewerID] = record{payload: sel, expiresAt: exp}
	return nil
}

// Delete implements selection.Store.
func (s *MemoryStore) Delete(_ context.Context, viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, viewerID)
	return nil
}

var _ selection.Store = (*MemoryStore)(nil)
