package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"coursegate/pkg/platform/sentinel"
)

// PostgresStore persists credentials in PostgreSQL. The partial unique index
// uq_credentials_active on (subject_id, course_id) WHERE active carries the
// at-most-one-active invariant; a 23505 from it surfaces as ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, cred Credential) error {
	query := `
		INSERT INTO credentials (id, subject_id, course_id, holder_name, course_name, score,
			verification_code, template_id, issued_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		cred.ID, cred.SubjectID, cred.CourseID, cred.HolderName, cred.CourseName, cred.Score,
		cred.VerificationCode, cred.TemplateID, cred.IssuedAt, cred.Active,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindActive(ctx context.Context, subjectID, courseID string) (Credential, error) {
	query := `
		SELECT id, subject_id, course_id, holder_name, course_name, score,
		       verification_code, template_id, issued_at, active
		FROM credentials
		WHERE subject_id = $1 AND course_id = $2 AND active
	`
	var c Credential
	err := s.db.QueryRowContext(ctx, query, subjectID, courseID).Scan(
		&c.ID, &c.SubjectID, &c.CourseID, &c.HolderName, &c.CourseName, &c.Score,
		&c.VerificationCode, &c.TemplateID, &c.IssuedAt, &c.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, sentinel.ErrNotFound
		}
		return Credential{}, fmt.Errorf("find credential: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, credentialID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE credentials SET active = FALSE WHERE id = $1`, credentialID)
	if err != nil {
		return fmt.Errorf("deactivate credential: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// PostgresTemplateStore persists certificate templates. A partial unique index
// on (is_default) WHERE is_default AND active backs the get-or-create.
type PostgresTemplateStore struct {
	db *sql.DB
}

func NewPostgresTemplateStore(db *sql.DB) *PostgresTemplateStore {
	return &PostgresTemplateStore{db: db}
}

func (s *PostgresTemplateStore) FindDefault(ctx context.Context) (Template, error) {
	query := `
		SELECT id, name, body_html, placeholders, is_default, active
		FROM credential_templates
		WHERE is_default AND active
	`
	var t Template
	err := s.db.QueryRowContext(ctx, query).Scan(
		&t.ID, &t.Name, &t.BodyHTML, pq.Array(&t.Placeholders), &t.IsDefault, &t.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, sentinel.ErrNotFound
		}
		return Template{}, fmt.Errorf("find default template: %w", err)
	}
	return t, nil
}

func (s *PostgresTemplateStore) Insert(ctx context.Context, tpl Template) error {
	query := `
		INSERT INTO credential_templates (id, name, body_html, placeholders, is_default, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		tpl.ID, tpl.Name, tpl.BodyHTML, pq.Array(tpl.Placeholders), tpl.IsDefault, tpl.Active,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}
