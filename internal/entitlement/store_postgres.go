package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"coursegate/pkg/platform/sentinel"
)

// PostgresStore persists entitlements in PostgreSQL. The single-row upsert and
// the unique key on payment_applications are the only consistency mechanisms;
// no locks are held across workflow steps.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, ent Entitlement) error {
	query := `
		INSERT INTO entitlements (subject_id, plan, status, period_start, period_end, granted_by_system)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			granted_by_system = EXCLUDED.granted_by_system
	`
	_, err := s.db.ExecContext(ctx, query,
		ent.SubjectID, ent.Plan, ent.Status, ent.PeriodStart, ent.PeriodEnd, ent.GrantedBySystem,
	)
	if err != nil {
		return fmt.Errorf("upsert entitlement: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBySubject(ctx context.Context, subjectID string) (Entitlement, error) {
	query := `
		SELECT subject_id, plan, status, period_start, period_end, granted_by_system
		FROM entitlements
		WHERE subject_id = $1
	`
	var ent Entitlement
	err := s.db.QueryRowContext(ctx, query, subjectID).Scan(
		&ent.SubjectID, &ent.Plan, &ent.Status, &ent.PeriodStart, &ent.PeriodEnd, &ent.GrantedBySystem,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entitlement{}, sentinel.ErrNotFound
		}
		return Entitlement{}, fmt.Errorf("find entitlement: %w", err)
	}
	return ent, nil
}

func (s *PostgresStore) RecordCharge(ctx context.Context, chargeID, subjectID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_applications (charge_id, subject_id) VALUES ($1, $2)`,
		chargeID, subjectID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("record charge: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, subjectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entitlements WHERE subject_id = $1`, subjectID)
	if err != nil {
		return fmt.Errorf("delete entitlement: %w", err)
	}
	return nil
}
