package service

import (
	"context"
	"fmt"

	"github.com/jask/kanban/internal/storage"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	Storage storage.Storage
	Key     string
}

// Reset wipes the stored board. The next start falls back to the demo board.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.Storage == nil {
		return fmt.Errorf("maintenance: storage not configured")
	}
	if err := s.Storage.Delete(ctx, s.Key); err != nil {
		return fmt.Errorf("reset %s: %w", s.Key, err)
	}
	return nil
}

// Export returns the raw stored snapshot.
func (s *MaintenanceService) Export(ctx context.Context) ([]byte, error) {
	if s.Storage == nil {
		return nil, fmt.Errorf("maintenance: storage not configured")
	}
	data, err := s.Storage.Get(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", s.Key, err)
	}
	return data, nil
}
