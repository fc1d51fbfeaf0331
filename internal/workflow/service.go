// Package workflow sequences the payment and assessment sagas. Each action is
// a fixed, strictly sequential step list; every step commits independently and
// a fatal failure aborts the remaining steps without rolling back committed
// ones. All cross-request consistency comes from the stores' per-row atomic
// primitives, never from locks held here.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coursegate/internal/assessment"
	"coursegate/internal/audit"
	"coursegate/internal/credential"
	"coursegate/internal/entitlement"
	"coursegate/internal/learning"
	"coursegate/internal/payments"
	"coursegate/internal/platform/metrics"
	dErrors "coursegate/pkg/domain-errors"
)

// Resolver derives the canonical identity for an external subject id.
type Resolver interface {
	Resolve(externalID string) string
}

// ProfileEnsurer maintains profiles best-effort; false means degraded.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, subjectID, displayName, email string) bool
}

// EntitlementGranter applies verified purchases.
type EntitlementGranter interface {
	GrantOrExtend(ctx context.Context, subjectID, plan, chargeID string) (entitlement.GrantResult, error)
}

// LearningRecorder owns learning-record reads and merges.
type LearningRecorder interface {
	FetchOrCreate(ctx context.Context, subjectID, courseID string) (learning.Record, error)
	Merge(ctx context.Context, subjectID, courseID string, patch learning.Patch) (learning.Record, error)
	ApplyAssessment(ctx context.Context, subjectID, courseID string, score int, passed bool) (learning.Record, error)
}

// CredentialIssuer runs the certificate state machine.
type CredentialIssuer interface {
	Issue(ctx context.Context, req credential.IssueRequest) (credential.IssueResult, error)
}

// AuditPublisher records workflow events; fire-and-forget.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service is the workflow orchestrator.
type Service struct {
	resolver      Resolver
	webhookSecret string
	gateway       payments.Gateway
	paymentStore  payments.Store
	profiles      ProfileEnsurer
	entitlements  EntitlementGranter
	learning      LearningRecorder
	questions     assessment.QuestionStore
	issuer        CredentialIssuer
	auditor       AuditPublisher
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewService(
	resolver Resolver,
	webhookSecret string,
	gateway payments.Gateway,
	paymentStore payments.Store,
	profiles ProfileEnsurer,
	entitlements EntitlementGranter,
	learningSvc LearningRecorder,
	questions assessment.QuestionStore,
	issuer CredentialIssuer,
	auditor AuditPublisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		resolver:      resolver,
		webhookSecret: webhookSecret,
		gateway:       gateway,
		paymentStore:  paymentStore,
		profiles:      profiles,
		entitlements:  entitlements,
		learning:      learningSvc,
		questions:     questions,
		issuer:        issuer,
		auditor:       auditor,
		logger:        logger,
		metrics:       m,
		now:           time.Now,
	}
}

// CreateOrder is a pure passthrough to the payment gateway; no state is
// written in this system.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (payments.Order, error) {
	if req.Amount <= 0 {
		return payments.Order{}, dErrors.New(dErrors.CodeBadRequest, "amount must be positive").WithDetails("gateway")
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}
	return s.gateway.CreateOrder(ctx, req.Amount, req.Currency, req.Receipt)
}

// VerifyPayment runs the purchase saga: resolve identity, authenticate the
// callback, record the payment fact, grant or extend the entitlement. The
// saga is forward-only: a payment row committed before an entitlement fault
// stays committed and is reconciled out-of-band.
func (s *Service) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (VerifyPaymentResponse, error) {
	if req.ExternalID == "" {
		return VerifyPaymentResponse{}, dErrors.New(dErrors.CodeBadRequest, "external id is required").WithDetails("workflow")
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return VerifyPaymentResponse{}, dErrors.New(dErrors.CodeBadRequest, "order id, payment id and signature are required").WithDetails("workflow")
	}
	if req.Plan == "" {
		return VerifyPaymentResponse{}, dErrors.New(dErrors.CodeBadRequest, "plan is required").WithDetails("workflow")
	}

	subjectID := s.resolver.Resolve(req.ExternalID)

	if !payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.webhookSecret) {
		if s.metrics != nil {
			s.metrics.SignatureFailures.Inc()
		}
		s.logger.WarnContext(ctx, "payment signature verification failed",
			"subject_id", subjectID,
			"order_id", req.OrderID,
		)
		return VerifyPaymentResponse{}, dErrors.New(dErrors.CodeUnauthorized, "invalid payment signature").WithDetails("payments")
	}

	var degraded []string
	if !s.profiles.Ensure(ctx, subjectID, req.Name, req.Email) {
		degraded = append(degraded, DegradedProfile)
		if s.metrics != nil {
			s.metrics.DegradedSteps.WithLabelValues(DegradedProfile).Inc()
		}
	}

	record := payments.Record{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		OrderID:   req.OrderID,
		ChargeID:  req.PaymentID,
		Signature: req.Signature,
		Amount:    int64(req.Amount * 100),
		Currency:  req.Currency,
		Plan:      req.Plan,
		Status:    payments.StatusVerified,
		CreatedAt: s.now(),
	}
	if err := s.paymentStore.Insert(ctx, record); err != nil {
		return VerifyPaymentResponse{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment").WithDetails("payments")
	}
	if s.metrics != nil {
		s.metrics.PaymentsRecorded.Inc()
	}

	grant, err := s.entitlements.GrantOrExtend(ctx, subjectID, req.Plan, req.PaymentID)
	if err != nil {
		// The payment row stays; report the fault, never success.
		s.logger.ErrorContext(ctx, "entitlement grant failed after payment recorded",
			"subject_id", subjectID,
			"charge_id", req.PaymentID,
			"error", err.Error(),
		)
		return VerifyPaymentResponse{}, err
	}
	if s.metrics != nil {
		if grant.Duplicate {
			s.metrics.DuplicateCharges.Inc()
		} else {
			s.metrics.EntitlementsUpsert.Inc()
		}
	}

	s.auditor.Emit(ctx, audit.Event{
		SubjectID: subjectID,
		Action:    "payment_verified",
		Outcome:   "success",
		Detail:    req.OrderID,
	})
	if !grant.Duplicate {
		s.auditor.Emit(ctx, audit.Event{
			SubjectID: subjectID,
			Action:    "entitlement_granted",
			Outcome:   "success",
			Detail:    grant.Entitlement.Plan,
		})
	}

	return VerifyPaymentResponse{
		SubjectID:       subjectID,
		Plan:            grant.Entitlement.Plan,
		Status:          grant.Entitlement.Status,
		PeriodStart:     grant.Entitlement.PeriodStart,
		PeriodEnd:       grant.Entitlement.PeriodEnd,
		DuplicateCharge: grant.Duplicate,
		Degraded:        degraded,
	}, nil
}

// Fetch returns the learning record for (subject, course), creating it on
// first touch.
func (s *Service) Fetch(ctx context.Context, req FetchRequest) (LearningResponse, error) {
	if req.ExternalID == "" || req.CourseID == "" {
		return LearningResponse{}, dErrors.New(dErrors.CodeBadRequest, "external id and course id are required").WithDetails("workflow")
	}

	subjectID := s.resolver.Resolve(req.ExternalID)

	var degraded []string
	if !s.profiles.Ensure(ctx, subjectID, req.Name, req.Email) {
		degraded = append(degraded, DegradedProfile)
		if s.metrics != nil {
			s.metrics.DegradedSteps.WithLabelValues(DegradedProfile).Inc()
		}
	}

	rec, err := s.learning.FetchOrCreate(ctx, subjectID, req.CourseID)
	if err != nil {
		return LearningResponse{}, err
	}
	return learningResponse(rec, degraded), nil
}

// Update merge-updates the learning record with caller-supplied progress.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (LearningResponse, error) {
	if req.ExternalID == "" || req.CourseID == "" {
		return LearningResponse{}, dErrors.New(dErrors.CodeBadRequest, "external id and course id are required").WithDetails("workflow")
	}

	subjectID := s.resolver.Resolve(req.ExternalID)

	var degraded []string
	if !s.profiles.Ensure(ctx, subjectID, req.Name, req.Email) {
		degraded = append(degraded, DegradedProfile)
		if s.metrics != nil {
			s.metrics.DegradedSteps.WithLabelValues(DegradedProfile).Inc()
		}
	}

	rec, err := s.learning.Merge(ctx, subjectID, req.CourseID, learning.Patch{
		Progress:         req.Progress,
		CompletedModules: req.CompletedModules,
		TotalModules:     req.TotalModules,
	})
	if err != nil {
		return LearningResponse{}, err
	}
	return learningResponse(rec, degraded), nil
}

// EvaluateAssessment scores a submission, records the outcome, and issues a
// certificate when the learner passed and a course display name was supplied.
func (s *Service) EvaluateAssessment(ctx context.Context, req EvaluateAssessmentRequest) (EvaluateAssessmentResponse, error) {
	if req.ExternalID == "" {
		return EvaluateAssessmentResponse{}, dErrors.New(dErrors.CodeBadRequest, "external id is required").WithDetails("workflow")
	}
	if req.CourseID == "" {
		return EvaluateAssessmentResponse{}, dErrors.New(dErrors.CodeBadRequest, "course id is required").WithDetails("workflow")
	}
	if len(req.Answers) == 0 {
		return EvaluateAssessmentResponse{}, dErrors.New(dErrors.CodeBadRequest, "answers are required").WithDetails("workflow")
	}

	subjectID := s.resolver.Resolve(req.ExternalID)

	var degraded []string
	if !s.profiles.Ensure(ctx, subjectID, req.Name, req.Email) {
		degraded = append(degraded, DegradedProfile)
		if s.metrics != nil {
			s.metrics.DegradedSteps.WithLabelValues(DegradedProfile).Inc()
		}
	}

	questions, err := s.questions.ListByCourse(ctx, req.CourseID)
	if err != nil {
		return EvaluateAssessmentResponse{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load questions").WithDetails("assessment")
	}

	result, err := assessment.Score(req.Answers, questions)
	if err != nil {
		return EvaluateAssessmentResponse{}, err
	}

	if _, err := s.learning.ApplyAssessment(ctx, subjectID, req.CourseID, result.Score, result.Passed); err != nil {
		return EvaluateAssessmentResponse{}, err
	}

	response := EvaluateAssessmentResponse{
		SubjectID: subjectID,
		CourseID:  req.CourseID,
		Score:     result.Score,
		Passed:    result.Passed,
		Correct:   result.Correct,
		Total:     result.Total,
		Breakdown: result.PerQuestion,
	}

	if result.Passed && req.CourseName != "" {
		issued, err := s.issuer.Issue(ctx, credential.IssueRequest{
			SubjectID:  subjectID,
			CourseID:   req.CourseID,
			CourseName: req.CourseName,
			HolderName: req.Name,
			Score:      result.Score,
		})
		if err != nil {
			return EvaluateAssessmentResponse{}, err
		}
		if issued.Degraded {
			degraded = append(degraded, DegradedTracking)
			if s.metrics != nil {
				s.metrics.DegradedSteps.WithLabelValues(DegradedTracking).Inc()
			}
		}
		if issued.Status == credential.StatusIssued {
			if s.metrics != nil {
				s.metrics.CredentialsIssued.Inc()
			}
			s.auditor.Emit(ctx, audit.Event{
				SubjectID: subjectID,
				Action:    "credential_issued",
				Outcome:   "success",
				Detail:    issued.CredentialID,
			})
		}
		response.Credential = &CredentialOutcome{
			Status:           string(issued.Status),
			CredentialID:     issued.CredentialID,
			VerificationCode: issued.VerificationCode,
		}
	}

	s.auditor.Emit(ctx, audit.Event{
		SubjectID: subjectID,
		Action:    "assessment_evaluated",
		Outcome:   outcomeLabel(result.Passed),
		Detail:    req.CourseID,
	})

	response.Degraded = degraded
	return response, nil
}

func outcomeLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

func learningResponse(rec learning.Record, degraded []string) LearningResponse {
	return LearningResponse{
		SubjectID:           rec.SubjectID,
		CourseID:            rec.CourseID,
		Progress:            rec.Progress,
		CompletedModules:    rec.CompletedModules,
		TotalModules:        rec.TotalModules,
		AssessmentAttempted: rec.AssessmentAttempted,
		AssessmentPassed:    rec.AssessmentPassed,
		AssessmentScore:     rec.AssessmentScore,
		CompletedAt:         rec.CompletedAt,
		Degraded:            degraded,
	}
}
