package profile

import (
	"context"
	"log/slog"
)

// Service fronts the profile store for the workflow. Every call site treats
// profile maintenance as best-effort: a failure is reported back as ok=false
// so the orchestrator can flag the response degraded, but the workflow
// continues.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Ensure gets-or-creates the profile for subjectID. The boolean result is
// false when the store failed; the error is logged here, never propagated.
func (s *Service) Ensure(ctx context.Context, subjectID, displayName, email string) bool {
	if _, err := s.store.Ensure(ctx, subjectID, displayName, email); err != nil {
		s.logger.WarnContext(ctx, "profile ensure failed",
			"subject_id", subjectID,
			"error", err.Error(),
		)
		return false
	}
	return true
}

// Get returns the stored profile, for display joins in responses.
func (s *Service) Get(ctx context.Context, subjectID string) (Profile, error) {
	return s.store.FindBySubject(ctx, subjectID)
}
