package pw

import (
	"context"
	"fmt"

	"github.com/thedeuce2/ProWriter/internal/model"
)

// GetHistory returns the most recent operations, ordered newest first.
func (s *PWService) GetHistory(ctx context.Context, limit int) ([]*model.Operation, error) {
	ops, err := s.database.ListOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
