package learning

import (
	"context"
	"sync"

	"coursegate/pkg/platform/sentinel"
)

type recordKey struct {
	subjectID string
	courseID  string
}

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[recordKey]Record)}
}

func (s *InMemoryStore) Find(_ context.Context, subjectID, courseID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{subjectID, courseID}]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return clone(rec), nil
}

func (s *InMemoryStore) Upsert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{record.SubjectID, record.CourseID}] = clone(record)
	return nil
}

func clone(rec Record) Record {
	if rec.Progress != nil {
		copied := make(map[string]int, len(rec.Progress))
		for k, v := range rec.Progress {
			copied[k] = v
		}
		rec.Progress = copied
	}
	return rec
}
