// Package postgres provides a PostgreSQL implementation of storage interfaces.
// This file contains test helpers only available during testing.
package postgres

import (
	"context"
	"fmt"
)

// TruncateForTest removes all rows from the documents table.
// It is exported so that the postgres_test package can call it.
func (s *DocumentStore) TruncateForTest(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE TABLE documents RESTART IDENTITY")
	if err != nil {
		return fmt.Errorf("postgres: failed to truncate documents: %w", err)
	}
	return nil
}
