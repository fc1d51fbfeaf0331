package assessment

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresQuestionStore reads canonical question sets from PostgreSQL.
type PostgresQuestionStore struct {
	db *sql.DB
}

func NewPostgresQuestionStore(db *sql.DB) *PostgresQuestionStore {
	return &PostgresQuestionStore{db: db}
}

func (s *PostgresQuestionStore) ListByCourse(ctx context.Context, courseID string) ([]Question, error) {
	query := `
		SELECT id, course_id, correct_choice
		FROM assessment_questions
		WHERE course_id = $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.CourseID, &q.CorrectChoice); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return out, nil
}
