package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "coursegate/pkg/domain-errors"
	"coursegate/pkg/platform/sentinel"
)

// Service applies purchases and administrative grants to entitlements.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// GrantOrExtend applies a verified purchase: status active, plan overwritten,
// period reset to [now, now+1 month]. Repeating the call always re-extends
// from "now" (overwrite, not accumulate).
//
// The gateway charge id acts as a durable idempotency key recorded before the
// extension: a retried verification request for the same charge is a no-op
// that returns the current entitlement with Duplicate=true, instead of
// granting a free month. Callers that pass an empty charge id opt out of the
// guard and get the legacy always-extend behavior.
func (s *Service) GrantOrExtend(ctx context.Context, subjectID, plan, chargeID string) (GrantResult, error) {
	if chargeID != "" {
		err := s.store.RecordCharge(ctx, chargeID, subjectID)
		if errors.Is(err, sentinel.ErrConflict) {
			s.logger.WarnContext(ctx, "duplicate charge suppressed",
				"subject_id", subjectID,
				"charge_id", chargeID,
			)
			current, ferr := s.store.FindBySubject(ctx, subjectID)
			if ferr != nil && !errors.Is(ferr, sentinel.ErrNotFound) {
				return GrantResult{}, dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load entitlement").WithDetails("entitlement")
			}
			return GrantResult{Entitlement: current, Duplicate: true}, nil
		}
		if err != nil {
			return GrantResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment application").WithDetails("entitlement")
		}
	}

	now := s.now()
	ent := Entitlement{
		SubjectID:       subjectID,
		Plan:            plan,
		Status:          StatusActive,
		PeriodStart:     now,
		PeriodEnd:       now.AddDate(0, 1, 0),
		GrantedBySystem: false,
	}
	if err := s.store.Upsert(ctx, ent); err != nil {
		return GrantResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upsert entitlement").WithDetails("entitlement")
	}
	return GrantResult{Entitlement: ent}, nil
}

// AdminGrant creates or extends an entitlement outside the purchase path.
func (s *Service) AdminGrant(ctx context.Context, subjectID, plan string, until time.Time) (Entitlement, error) {
	now := s.now()
	ent := Entitlement{
		SubjectID:       subjectID,
		Plan:            plan,
		Status:          StatusActive,
		PeriodStart:     now,
		PeriodEnd:       until,
		GrantedBySystem: true,
	}
	if err := s.store.Upsert(ctx, ent); err != nil {
		return Entitlement{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upsert entitlement").WithDetails("entitlement")
	}
	return ent, nil
}

// AdminRevoke is the only deletion path for entitlements.
func (s *Service) AdminRevoke(ctx context.Context, subjectID string) error {
	if err := s.store.Delete(ctx, subjectID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke entitlement").WithDetails("entitlement")
	}
	return nil
}

// Current returns the subject's entitlement, sentinel.ErrNotFound when absent.
func (s *Service) Current(ctx context.Context, subjectID string) (Entitlement, error) {
	return s.store.FindBySubject(ctx, subjectID)
}
