package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/econviz/diagram-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*model.Snapshot
	order     []string // insertion order, oldest first
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*model.Snapshot),
	}
}

func (s *MemoryStore) CreateSnapshot(_ context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[snap.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, snap.ID)
	}

	// Store a copy to avoid external mutation.
	s.snapshots[snap.ID] = cloneSnapshot(snap)
	s.order = append(s.order, snap.ID)
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, id string) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneSnapshot(snap), nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context, kind string, limit int) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = normalizeLimit(limit)
	result := make([]model.Snapshot, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(result) < limit; i-- {
		snap := s.snapshots[s.order[i]]
		if kind != "" && snap.Kind != kind {
			continue
		}
		result = append(result, *cloneSnapshot(snap))
	}
	return result, nil
}

func cloneSnapshot(snap *model.Snapshot) *model.Snapshot {
	c := *snap
	c.Params = snap.Params.Clone()
	if snap.Figures != nil {
		c.Figures = make(map[string]decimal.Decimal, len(snap.Figures))
		for k, v := range snap.Figures {
			c.Figures[k] = v
		}
	}
	return &c
}
