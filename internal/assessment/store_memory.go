package assessment

import (
	"context"
	"sync"
)

type InMemoryQuestionStore struct {
	mu        sync.RWMutex
	questions map[string][]Question
}

func NewInMemoryQuestionStore() *InMemoryQuestionStore {
	return &InMemoryQuestionStore{questions: make(map[string][]Question)}
}

// Seed replaces the question set for a course. Test and dev helper.
func (s *InMemoryQuestionStore) Seed(courseID string, questions []Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[courseID] = append([]Question{}, questions...)
}

func (s *InMemoryQuestionStore) ListByCourse(_ context.Context, courseID string) ([]Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Question{}, s.questions[courseID]...), nil
}
