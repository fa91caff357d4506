package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jask/kanban/internal/database"
	"github.com/jask/kanban/internal/database/repository"
)

// SQLite keeps snapshots in the snapshots table.
type SQLite struct {
	db   *sql.DB
	repo *repository.SnapshotRepo
}

// OpenSQLite migrates and opens the database at path. busy bounds how long
// a write waits on another process; zero uses the database default.
func OpenSQLite(ctx context.Context, path string, busy time.Duration) (*SQLite, error) {
	db, err := database.Open(ctx, path, busy)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &SQLite{db: db, repo: repository.NewSnapshotRepo(db)}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNotFound
	}
	return snap.Value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	return s.repo.Upsert(ctx, repository.Snapshot{Key: key, Value: value, UpdatedAt: database.Now()})
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

func (s *SQLite) Close() error { return s.db.Close() }
