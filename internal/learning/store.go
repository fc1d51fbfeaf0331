package learning

import "context"

// Store persists learning records.
type Store interface {
	Find(ctx context.Context, subjectID, courseID string) (Record, error)
	Upsert(ctx context.Context, record Record) error
}
