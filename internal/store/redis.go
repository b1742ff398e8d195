package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/econviz/diagram-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Snapshots are immutable, so a cached entry never goes stale; the
// TTL only bounds memory use. Lists are cached per kind and dropped on every
// write.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, populate cache) ---

func (s *CachedStore) CreateSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if err := s.primary.CreateSnapshot(ctx, snap); err != nil {
		return err
	}
	s.cacheSnapshot(ctx, snap)
	// Invalidate list caches; next read will re-populate.
	s.rdb.Del(ctx, listKey(""), listKey(snap.Kind))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if err == nil {
		var snap model.Snapshot
		if json.Unmarshal(data, &snap) == nil {
			return &snap, nil
		}
	}

	// Cache miss: read from primary.
	snap, err := s.primary.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSnapshot(ctx, snap)
	return snap, nil
}

func (s *CachedStore) ListSnapshots(ctx context.Context, kind string, limit int) ([]model.Snapshot, error) {
	limit = normalizeLimit(limit)

	// Only the default page is cached.
	if limit != DefaultListLimit {
		return s.primary.ListSnapshots(ctx, kind, limit)
	}

	data, err := s.rdb.Get(ctx, listKey(kind)).Bytes()
	if err == nil {
		var snapshots []model.Snapshot
		if json.Unmarshal(data, &snapshots) == nil {
			return snapshots, nil
		}
	}

	snapshots, err := s.primary.ListSnapshots(ctx, kind, limit)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(snapshots); err == nil {
		s.rdb.Set(ctx, listKey(kind), data, s.ttl)
	}
	return snapshots, nil
}

// --- Cache helpers ---

func (s *CachedStore) cacheSnapshot(ctx context.Context, snap *model.Snapshot) {
	if data, err := json.Marshal(snap); err == nil {
		s.rdb.Set(ctx, snapshotKey(snap.ID), data, s.ttl)
	}
}

func snapshotKey(id string) string { return fmt.Sprintf("snapshot:%s", id) }
func listKey(kind string) string   { return fmt.Sprintf("snapshots:%s", kind) }
