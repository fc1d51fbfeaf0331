package assessment

import "context"

// QuestionStore reads canonical question sets. Writes happen through content
// tooling, not this service.
type QuestionStore interface {
	ListByCourse(ctx context.Context, courseID string) ([]Question, error)
}
