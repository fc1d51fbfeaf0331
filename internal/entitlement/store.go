package entitlement

import "context"

// Store persists entitlements and the charge idempotency ledger.
//
// RecordCharge must be durable before the extension is applied and must return
// sentinel.ErrConflict for a charge id seen before; that conflict is the
// retry-suppression signal.
type Store interface {
	Upsert(ctx context.Context, ent Entitlement) error
	FindBySubject(ctx context.Context, subjectID string) (Entitlement, error)
	RecordCharge(ctx context.Context, chargeID, subjectID string) error
	Delete(ctx context.Context, subjectID string) error
}
