package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Snapshot represents a snapshots row.
type Snapshot struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// SnapshotRepo handles whole-value snapshots keyed by name.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Get returns the snapshot for key, or nil when none is stored.
func (r *SnapshotRepo) Get(ctx context.Context, key string) (*Snapshot, error) {
	var s Snapshot
	err := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM snapshots WHERE key = ?`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SnapshotRepo) Upsert(ctx context.Context, s Snapshot) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO snapshots(key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
	 value=excluded.value,
	 updated_at=excluded.updated_at;
	`, s.Key, s.Value, s.UpdatedAt)
	return err
}

func (r *SnapshotRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	return err
}
