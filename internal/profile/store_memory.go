package profile

import (
	"context"
	"sync"
	"time"

	"coursegate/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]Profile)}
}

func (s *InMemoryStore) Ensure(_ context.Context, subjectID, displayName, email string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	if p, ok := s.profiles[subjectID]; ok {
		if p.DisplayName == "" && displayName != "" {
			p.DisplayName = displayName
		}
		if p.Email == "" && email != "" {
			p.Email = email
		}
		p.UpdatedAt = now
		s.profiles[subjectID] = p
		return p, nil
	}

	// Adoption: an existing profile with the same contact address is re-keyed
	// instead of duplicated.
	if email != "" {
		for key, p := range s.profiles {
			if p.Email == email {
				delete(s.profiles, key)
				p.SubjectID = subjectID
				if p.DisplayName == "" && displayName != "" {
					p.DisplayName = displayName
				}
				p.UpdatedAt = now
				s.profiles[subjectID] = p
				return p, nil
			}
		}
	}

	p := Profile{
		SubjectID:   subjectID,
		DisplayName: displayName,
		Email:       email,
		Role:        RoleLearner,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.profiles[subjectID] = p
	return p, nil
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subjectID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[subjectID]
	if !ok {
		return Profile{}, sentinel.ErrNotFound
	}
	return p, nil
}
