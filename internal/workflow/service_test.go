package workflow

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursegate/internal/assessment"
	"coursegate/internal/audit"
	"coursegate/internal/credential"
	"coursegate/internal/entitlement"
	"coursegate/internal/identity"
	"coursegate/internal/learning"
	"coursegate/internal/payments"
	"coursegate/internal/platform/config"
	"coursegate/internal/platform/logger"
	"coursegate/internal/platform/metrics"
	"coursegate/internal/profile"
	"coursegate/internal/tracking"
	dErrors "coursegate/pkg/domain-errors"
)

const testSecret = "webhook-secret"

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type fixture struct {
	svc          *Service
	payments     *payments.InMemoryStore
	entitlements *entitlement.InMemoryStore
	questions    *assessment.InMemoryQuestionStore
	credentials  *credential.InMemoryStore
	learning     *learning.InMemoryStore
	auditInbox   chan audit.Event
}

type stubGateway struct {
	order payments.Order
	err   error
}

func (g *stubGateway) CreateOrder(_ context.Context, amount float64, currency, receipt string) (payments.Order, error) {
	if g.err != nil {
		return payments.Order{}, g.err
	}
	order := g.order
	order.Amount = int64(amount * 100)
	order.Currency = currency
	order.Receipt = receipt
	return order, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.New()

	paymentStore := payments.NewInMemoryStore()
	entitlementStore := entitlement.NewInMemoryStore()
	questionStore := assessment.NewInMemoryQuestionStore()
	credentialStore := credential.NewInMemoryStore()
	learningStore := learning.NewInMemoryStore()
	inbox := make(chan audit.Event, 16)

	issuer := credential.NewIssuer(
		credentialStore,
		credential.NewInMemoryTemplateStore(),
		tracking.NewInMemoryTracker(),
		log,
	)

	svc := NewService(
		identity.New(config.IdentityNamespace, identity.V1),
		testSecret,
		&stubGateway{order: payments.Order{ID: "order_1", Status: "created"}},
		paymentStore,
		profile.NewService(profile.NewInMemoryStore(), log),
		entitlement.NewService(entitlementStore, log),
		learning.NewService(learningStore),
		questionStore,
		issuer,
		audit.NewPublisher(inbox, log),
		log,
		nil,
	)

	return &fixture{
		svc:          svc,
		payments:     paymentStore,
		entitlements: entitlementStore,
		questions:    questionStore,
		credentials:  credentialStore,
		learning:     learningStore,
		auditInbox:   inbox,
	}
}

func TestVerifyPaymentHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.VerifyPayment(ctx, VerifyPaymentRequest{
		ExternalID: "user-1",
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Signature:  sign("order_1", "pay_1"),
		Plan:       "pro",
		Amount:     499.0,
		Currency:   "INR",
		Name:       "Asha",
		Email:      "asha@example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SubjectID)
	assert.Equal(t, "pro", resp.Plan)
	assert.Equal(t, entitlement.StatusActive, resp.Status)
	assert.Equal(t, resp.PeriodStart.AddDate(0, 1, 0), resp.PeriodEnd)
	assert.False(t, resp.DuplicateCharge)
	assert.Empty(t, resp.Degraded)

	records, err := f.payments.ListBySubject(ctx, resp.SubjectID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(49900), records[0].Amount)
	assert.Equal(t, payments.StatusVerified, records[0].Status)

	event := <-f.auditInbox
	assert.Equal(t, "payment_verified", event.Action)
	assert.Equal(t, resp.SubjectID, event.SubjectID)
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.VerifyPayment(context.Background(), VerifyPaymentRequest{
		ExternalID: "user-1",
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Signature:  "deadbeef",
		Plan:       "pro",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// Nothing was committed.
	subjectID := identity.New(config.IdentityNamespace, identity.V1).Resolve("user-1")
	records, err := f.payments.ListBySubject(context.Background(), subjectID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestVerifyPaymentValidatesRequiredFields(t *testing.T) {
	f := newFixture(t)

	for name, req := range map[string]VerifyPaymentRequest{
		"missing external id": {OrderID: "o", PaymentID: "p", Signature: "s", Plan: "pro"},
		"missing order id":    {ExternalID: "u", PaymentID: "p", Signature: "s", Plan: "pro"},
		"missing plan":        {ExternalID: "u", OrderID: "o", PaymentID: "p", Signature: "s"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.VerifyPayment(context.Background(), req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}

func TestVerifyPaymentDuplicateChargeIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := VerifyPaymentRequest{
		ExternalID: "user-1",
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Signature:  sign("order_1", "pay_1"),
		Plan:       "pro",
		Amount:     499.0,
	}
	first, err := f.svc.VerifyPayment(ctx, req)
	require.NoError(t, err)

	second, err := f.svc.VerifyPayment(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.DuplicateCharge)
	assert.Equal(t, first.PeriodEnd, second.PeriodEnd)
}

type erroringEntitlements struct{}

func (erroringEntitlements) GrantOrExtend(context.Context, string, string, string) (entitlement.GrantResult, error) {
	return entitlement.GrantResult{}, dErrors.New(dErrors.CodeInternal, "failed to upsert entitlement")
}

// The saga is forward-only: when the entitlement upsert fails after the
// payment record committed, the caller must see the fault and the payment row
// must remain for out-of-band reconciliation.
func TestVerifyPaymentKeepsPaymentRowWhenEntitlementFails(t *testing.T) {
	f := newFixture(t)
	f.svc.entitlements = erroringEntitlements{}
	ctx := context.Background()

	_, err := f.svc.VerifyPayment(ctx, VerifyPaymentRequest{
		ExternalID: "user-1",
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Signature:  sign("order_1", "pay_1"),
		Plan:       "pro",
		Amount:     499.0,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	subjectID := identity.New(config.IdentityNamespace, identity.V1).Resolve("user-1")
	records, err := f.payments.ListBySubject(ctx, subjectID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

type failingProfiles struct{}

func (failingProfiles) Ensure(context.Context, string, string, string) bool { return false }

func TestVerifyPaymentReportsDegradedProfile(t *testing.T) {
	f := newFixture(t)
	f.svc.profiles = failingProfiles{}

	resp, err := f.svc.VerifyPayment(context.Background(), VerifyPaymentRequest{
		ExternalID: "user-1",
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Signature:  sign("order_1", "pay_1"),
		Plan:       "pro",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{DegradedProfile}, resp.Degraded)
}

// Shared across tests: promauto registers on the default registry, so the
// metrics set can only be constructed once per test binary.
var testMetrics = metrics.New()

func TestDegradedProfileIsCountedOnEveryAction(t *testing.T) {
	f := newFixture(t)
	f.svc.metrics = testMetrics
	f.svc.profiles = failingProfiles{}
	ctx := context.Background()
	counter := testMetrics.DegradedSteps.WithLabelValues(DegradedProfile)

	before := promtestutil.ToFloat64(counter)

	resp, err := f.svc.Fetch(ctx, FetchRequest{ExternalID: "user-1", CourseID: "go-101"})
	require.NoError(t, err)
	assert.Equal(t, []string{DegradedProfile}, resp.Degraded)

	upd, err := f.svc.Update(ctx, UpdateRequest{
		ExternalID: "user-1",
		CourseID:   "go-101",
		Progress:   map[string]int{"m1": 100},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{DegradedProfile}, upd.Degraded)

	assert.Equal(t, before+2, promtestutil.ToFloat64(counter))
}

func TestCreateOrderPassesThrough(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:  499.0,
		Receipt: "rcpt-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, int64(49900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{Amount: 0})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestFetchCreatesEmptyRecord(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Fetch(context.Background(), FetchRequest{
		ExternalID: "user-1",
		CourseID:   "go-101",
	})
	require.NoError(t, err)
	assert.Equal(t, "go-101", resp.CourseID)
	assert.Empty(t, resp.Progress)
	assert.False(t, resp.AssessmentAttempted)
}

func TestUpdateMergesProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	total := 10

	_, err := f.svc.Update(ctx, UpdateRequest{
		ExternalID:   "user-1",
		CourseID:     "go-101",
		Progress:     map[string]int{"m1": 100},
		TotalModules: &total,
	})
	require.NoError(t, err)

	resp, err := f.svc.Update(ctx, UpdateRequest{
		ExternalID: "user-1",
		CourseID:   "go-101",
		Progress:   map[string]int{"m2": 50},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"m1": 100, "m2": 50}, resp.Progress)
	assert.Equal(t, 10, resp.TotalModules)
}

func seedQuestions(f *fixture, courseID string, n int) {
	questions := make([]assessment.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, assessment.Question{
			ID:            string(rune('a' + i)),
			CourseID:      courseID,
			CorrectChoice: "b",
		})
	}
	f.questions.Seed(courseID, questions)
}

func correctAnswers(n int) []assessment.Answer {
	answers := make([]assessment.Answer, 0, n)
	for i := 0; i < n; i++ {
		answers = append(answers, assessment.Answer{QuestionID: string(rune('a' + i)), Choice: "b"})
	}
	return answers
}

func TestEvaluateAssessmentPassIssuesCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedQuestions(f, "go-101", 10)

	resp, err := f.svc.EvaluateAssessment(ctx, EvaluateAssessmentRequest{
		ExternalID: "user-1",
		CourseID:   "go-101",
		CourseName: "Intro to Go",
		Name:       "Asha",
		Answers:    correctAnswers(10),
	})
	require.NoError(t, err)

	assert.Equal(t, 100, resp.Score)
	assert.True(t, resp.Passed)
	assert.Equal(t, 10, resp.Correct)
	require.NotNil(t, resp.Credential)
	assert.Equal(t, string(credential.StatusIssued), resp.Credential.Status)
	assert.NotEmpty(t, resp.Credential.VerificationCode)

	// Outcome is recorded on the learning record.
	rec, err := f.svc.Fetch(ctx, FetchRequest{ExternalID: "user-1", CourseID: "go-101"})
	require.NoError(t, err)
	assert.True(t, rec.AssessmentPassed)
	assert.Equal(t, 100, rec.AssessmentScore)
	require.NotNil(t, rec.CompletedAt)
}

func TestEvaluateAssessmentFailSkipsCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedQuestions(f, "go-101", 10)

	answers := correctAnswers(6) // 60 < passing score
	resp, err := f.svc.EvaluateAssessment(ctx, EvaluateAssessmentRequest{
		ExternalID: "user-1",
		CourseID:   "go-101",
		CourseName: "Intro to Go",
		Answers:    answers,
	})
	require.NoError(t, err)

	assert.Equal(t, 60, resp.Score)
	assert.False(t, resp.Passed)
	assert.Nil(t, resp.Credential)

	rec, err := f.svc.Fetch(ctx, FetchRequest{ExternalID: "user-1", CourseID: "go-101"})
	require.NoError(t, err)
	assert.True(t, rec.AssessmentAttempted)
	assert.False(t, rec.AssessmentPassed)
	assert.Nil(t, rec.CompletedAt)
}

func TestEvaluateAssessmentWithoutCourseNameSkipsCredential(t *testing.T) {
	f := newFixture(t)
	seedQuestions(f, "go-101", 10)

	resp, err := f.svc.EvaluateAssessment(context.Background(), EvaluateAssessmentRequest{
		ExternalID: "user-1",
		CourseID:   "go-101",
		Answers:    correctAnswers(10),
	})
	require.NoError(t, err)
	assert.True(t, resp.Passed)
	assert.Nil(t, resp.Credential)
}

func TestEvaluateAssessmentEmptyQuestionSetIsFatal(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.EvaluateAssessment(context.Background(), EvaluateAssessmentRequest{
		ExternalID: "user-1",
		CourseID:   "never-seeded",
		Answers:    []assessment.Answer{{QuestionID: "a", Choice: "b"}},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestEvaluateAssessmentValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.EvaluateAssessment(context.Background(), EvaluateAssessmentRequest{
		CourseID: "go-101",
		Answers:  []assessment.Answer{{QuestionID: "a", Choice: "b"}},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = f.svc.EvaluateAssessment(context.Background(), EvaluateAssessmentRequest{
		ExternalID: "user-1",
		CourseID:   "go-101",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestEvaluateAssessmentRepeatReportsAlreadyIssued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedQuestions(f, "go-101", 10)

	req := EvaluateAssessmentRequest{
		ExternalID: "user-1",
		CourseID:   "go-101",
		CourseName: "Intro to Go",
		Name:       "Asha",
		Answers:    correctAnswers(10),
	}
	first, err := f.svc.EvaluateAssessment(ctx, req)
	require.NoError(t, err)

	second, err := f.svc.EvaluateAssessment(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, second.Credential)
	assert.Equal(t, string(credential.StatusAlreadyIssued), second.Credential.Status)
	assert.Equal(t, first.Credential.CredentialID, second.Credential.CredentialID)
}
