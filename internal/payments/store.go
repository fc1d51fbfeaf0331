package payments

import "context"

// Store persists payment records. Insert-only by design; reconciliation of
// orphaned rows (payment recorded, entitlement upsert failed) happens
// out-of-band.
type Store interface {
	Insert(ctx context.Context, record Record) error
	ListBySubject(ctx context.Context, subjectID string) ([]Record, error)
}
