package learning

import (
	"context"
	"errors"
	"time"

	dErrors "coursegate/pkg/domain-errors"
	"coursegate/pkg/platform/sentinel"
)

// Service owns learning-record reads and merge-updates.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// FetchOrCreate returns the record for (subject, course), creating an empty
// one on first touch.
func (s *Service) FetchOrCreate(ctx context.Context, subjectID, courseID string) (Record, error) {
	rec, err := s.store.Find(ctx, subjectID, courseID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load learning record").WithDetails("learning")
	}

	rec = Record{
		SubjectID: subjectID,
		CourseID:  courseID,
		Progress:  map[string]int{},
		UpdatedAt: s.now(),
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create learning record").WithDetails("learning")
	}
	return rec, nil
}

// Merge applies a caller-supplied patch with "prefer new, fall back to prior,
// default zero" precedence, creating the record if needed.
func (s *Service) Merge(ctx context.Context, subjectID, courseID string, patch Patch) (Record, error) {
	rec, err := s.FetchOrCreate(ctx, subjectID, courseID)
	if err != nil {
		return Record{}, err
	}

	if patch.Progress != nil {
		if rec.Progress == nil {
			rec.Progress = map[string]int{}
		}
		for module, pct := range patch.Progress {
			rec.Progress[module] = pct
		}
	}
	if patch.CompletedModules != nil {
		rec.CompletedModules = *patch.CompletedModules
	}
	if patch.TotalModules != nil {
		rec.TotalModules = *patch.TotalModules
	}
	rec.UpdatedAt = s.now()

	if err := s.store.Upsert(ctx, rec); err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update learning record").WithDetails("learning")
	}
	return rec, nil
}

// ApplyAssessment records an assessment outcome on the learning record. A
// passing outcome stamps the completion timestamp once; later attempts never
// clear it.
func (s *Service) ApplyAssessment(ctx context.Context, subjectID, courseID string, score int, passed bool) (Record, error) {
	rec, err := s.FetchOrCreate(ctx, subjectID, courseID)
	if err != nil {
		return Record{}, err
	}

	now := s.now()
	rec.AssessmentAttempted = true
	rec.AssessmentScore = score
	if passed {
		rec.AssessmentPassed = true
		if rec.CompletedAt == nil {
			rec.CompletedAt = &now
		}
	}
	rec.UpdatedAt = now

	if err := s.store.Upsert(ctx, rec); err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record assessment result").WithDetails("learning")
	}
	return rec, nil
}
