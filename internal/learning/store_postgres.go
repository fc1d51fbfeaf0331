package learning

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"coursegate/pkg/platform/sentinel"
)

// PostgresStore persists learning records in PostgreSQL. The progress map is
// stored as JSONB; the (subject_id, course_id) primary key backs the upsert.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, subjectID, courseID string) (Record, error) {
	query := `
		SELECT subject_id, course_id, progress, completed_modules, total_modules,
		       assessment_attempted, assessment_passed, assessment_score, completed_at, updated_at
		FROM learning_records
		WHERE subject_id = $1 AND course_id = $2
	`
	var (
		rec         Record
		progressRaw []byte
		completedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, subjectID, courseID).Scan(
		&rec.SubjectID, &rec.CourseID, &progressRaw, &rec.CompletedModules, &rec.TotalModules,
		&rec.AssessmentAttempted, &rec.AssessmentPassed, &rec.AssessmentScore, &completedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("find learning record: %w", err)
	}
	if len(progressRaw) > 0 {
		if err := json.Unmarshal(progressRaw, &rec.Progress); err != nil {
			return Record{}, fmt.Errorf("decode progress: %w", err)
		}
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	return rec, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, record Record) error {
	progressRaw, err := json.Marshal(record.Progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	query := `
		INSERT INTO learning_records (subject_id, course_id, progress, completed_modules, total_modules,
			assessment_attempted, assessment_passed, assessment_score, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (subject_id, course_id) DO UPDATE SET
			progress = EXCLUDED.progress,
			completed_modules = EXCLUDED.completed_modules,
			total_modules = EXCLUDED.total_modules,
			assessment_attempted = EXCLUDED.assessment_attempted,
			assessment_passed = EXCLUDED.assessment_passed,
			assessment_score = EXCLUDED.assessment_score,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
	`
	var completedAt sql.NullTime
	if record.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *record.CompletedAt, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, query,
		record.SubjectID, record.CourseID, progressRaw, record.CompletedModules, record.TotalModules,
		record.AssessmentAttempted, record.AssessmentPassed, record.AssessmentScore, completedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert learning record: %w", err)
	}
	return nil
}
