package entitlement

import (
	"context"
	"sync"

	"coursegate/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu           sync.Mutex
	entitlements map[string]Entitlement
	charges      map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entitlements: make(map[string]Entitlement),
		charges:      make(map[string]string),
	}
}

func (s *InMemoryStore) Upsert(_ context.Context, ent Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entitlements[ent.SubjectID] = ent
	return nil
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subjectID string) (Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entitlements[subjectID]
	if !ok {
		return Entitlement{}, sentinel.ErrNotFound
	}
	return ent, nil
}

func (s *InMemoryStore) RecordCharge(_ context.Context, chargeID, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.charges[chargeID]; seen {
		return sentinel.ErrConflict
	}
	s.charges[chargeID] = subjectID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entitlements, subjectID)
	return nil
}
