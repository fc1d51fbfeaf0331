package credential

import (
	"context"
	"sync"

	"coursegate/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu          sync.Mutex
	credentials []Credential
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.credentials {
		if c.Active && c.SubjectID == cred.SubjectID && c.CourseID == cred.CourseID {
			return sentinel.ErrConflict
		}
	}
	s.credentials = append(s.credentials, cred)
	return nil
}

func (s *InMemoryStore) FindActive(_ context.Context, subjectID, courseID string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.credentials {
		if c.Active && c.SubjectID == subjectID && c.CourseID == courseID {
			return c, nil
		}
	}
	return Credential{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Deactivate(_ context.Context, credentialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.credentials {
		if s.credentials[i].ID == credentialID {
			s.credentials[i].Active = false
			return nil
		}
	}
	return sentinel.ErrNotFound
}

type InMemoryTemplateStore struct {
	mu        sync.Mutex
	templates []Template
}

func NewInMemoryTemplateStore() *InMemoryTemplateStore {
	return &InMemoryTemplateStore{}
}

func (s *InMemoryTemplateStore) FindDefault(_ context.Context) (Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.IsDefault && t.Active {
			return t, nil
		}
	}
	return Template{}, sentinel.ErrNotFound
}

func (s *InMemoryTemplateStore) Insert(_ context.Context, tpl Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tpl.IsDefault {
		for _, t := range s.templates {
			if t.IsDefault && t.Active {
				return sentinel.ErrConflict
			}
		}
	}
	s.templates = append(s.templates, tpl)
	return nil
}
