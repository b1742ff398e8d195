package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/econviz/diagram-engine/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Parameters and figures are stored as JSONB; figures keep their decimal
// string form so archived values are exact.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the snapshots table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateSnapshot(ctx context.Context, snap *model.Snapshot) error {
	params, err := json.Marshal(snap.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	figures, err := json.Marshal(snap.Figures)
	if err != nil {
		return fmt.Errorf("marshal figures: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, kind, params, figures, created_at)
		 VALUES ($1, $2, $3::JSONB, $4::JSONB, $5)
		 ON CONFLICT (id) DO NOTHING`,
		snap.ID, snap.Kind, string(params), string(figures), snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create snapshot %s: %w", snap.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, snap.ID)
	}
	return nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id::TEXT, kind, params::TEXT, figures::TEXT, created_at
		 FROM snapshots WHERE id = $1`, id)

	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, kind string, limit int) ([]model.Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::TEXT, kind, params::TEXT, figures::TEXT, created_at
		 FROM snapshots
		 WHERE $1 = '' OR kind = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, kind, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, rows.Err()
}

// scanSnapshot reads one row of the snapshot column list. Both pgx.Row and
// pgx.Rows satisfy it.
func scanSnapshot(row pgx.Row) (*model.Snapshot, error) {
	var snap model.Snapshot
	var paramsS, figuresS string

	if err := row.Scan(&snap.ID, &snap.Kind, &paramsS, &figuresS, &snap.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(paramsS), &snap.Params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	figures := make(map[string]decimal.Decimal)
	if err := json.Unmarshal([]byte(figuresS), &figures); err != nil {
		return nil, fmt.Errorf("decode figures: %w", err)
	}
	snap.Figures = figures
	return &snap, nil
}
