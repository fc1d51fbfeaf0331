package tracking

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresTracker calls the update_completion_tracking stored procedure.
type PostgresTracker struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresTracker {
	return &PostgresTracker{db: db}
}

func (t *PostgresTracker) RecordCompletion(ctx context.Context, subjectID, courseID string, score int) error {
	var updated int
	err := t.db.QueryRowContext(ctx, `SELECT update_completion_tracking($1, $2, $3)`, subjectID, courseID, score).Scan(&updated)
	if err != nil {
		return fmt.Errorf("update completion tracking: %w", err)
	}
	return nil
}
