// Package store persists diagram snapshots: immutable records of an explicit
// export (diagram kind, parameter record and computed figures) that can be
// re-rendered later by ID. Implementations include PostgreSQL (source of
// truth), Redis (read-through cache), and in-memory (for testing).
//
// Snapshots are not session state. Nothing here tracks users or live slider
// positions.
package store

import (
	"context"
	"errors"

	"github.com/econviz/diagram-engine/internal/model"
)

var (
	// ErrNotFound is returned when no snapshot has the requested ID.
	ErrNotFound = errors.New("store: snapshot not found")

	// ErrDuplicate is returned when a snapshot ID is already taken.
	ErrDuplicate = errors.New("store: snapshot already exists")
)

// DefaultListLimit caps ListSnapshots when the caller passes limit <= 0.
const DefaultListLimit = 50

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// CreateSnapshot persists a new snapshot. Snapshots are never updated.
	CreateSnapshot(ctx context.Context, snap *model.Snapshot) error

	// GetSnapshot retrieves a snapshot by its ID.
	GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error)

	// ListSnapshots returns the newest snapshots first, optionally filtered
	// by diagram kind (empty kind lists all).
	ListSnapshots(ctx context.Context, kind string, limit int) ([]model.Snapshot, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
