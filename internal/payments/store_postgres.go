package payments

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists payment records in PostgreSQL.
// This store is pure I/O; signature checks and sequencing belong to the workflow.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed payment store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, record Record) error {
	query := `
		INSERT INTO payments (id, subject_id, order_id, charge_id, signature, amount, currency, plan, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.SubjectID,
		record.OrderID,
		record.ChargeID,
		record.Signature,
		record.Amount,
		record.Currency,
		record.Plan,
		record.Status,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID string) ([]Record, error) {
	query := `
		SELECT id, subject_id, order_id, charge_id, signature, amount, currency, plan, status, created_at
		FROM payments
		WHERE subject_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.OrderID, &r.ChargeID, &r.Signature, &r.Amount, &r.Currency, &r.Plan, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
