package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursegate/pkg/platform/sentinel"
)

// PostgresStore persists profiles in PostgreSQL. Get-or-create runs through
// the ensure_profile stored procedure so the merge and adoption rules are
// atomic at the storage layer.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ensure(ctx context.Context, subjectID, displayName, email string) (Profile, error) {
	var resolved string
	err := s.db.QueryRowContext(ctx, `SELECT ensure_profile($1, $2, $3)`, subjectID, displayName, email).Scan(&resolved)
	if err != nil {
		return Profile{}, fmt.Errorf("ensure profile: %w", err)
	}
	return s.FindBySubject(ctx, resolved)
}

func (s *PostgresStore) FindBySubject(ctx context.Context, subjectID string) (Profile, error) {
	query := `
		SELECT subject_id, display_name, email, role, status, created_at, updated_at
		FROM profiles
		WHERE subject_id = $1
	`
	var p Profile
	err := s.db.QueryRowContext(ctx, query, subjectID).Scan(
		&p.SubjectID, &p.DisplayName, &p.Email, &p.Role, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, sentinel.ErrNotFound
		}
		return Profile{}, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}
