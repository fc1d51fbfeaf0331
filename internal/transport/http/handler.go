package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"coursegate/internal/assessment"
	"coursegate/internal/payments"
	"coursegate/internal/platform/metrics"
	"coursegate/internal/platform/middleware"
	"coursegate/internal/workflow"
	dErrors "coursegate/pkg/domain-errors"
)

// WorkflowService is the orchestrator surface the transport depends on.
type WorkflowService interface {
	CreateOrder(ctx context.Context, req workflow.CreateOrderRequest) (payments.Order, error)
	VerifyPayment(ctx context.Context, req workflow.VerifyPaymentRequest) (workflow.VerifyPaymentResponse, error)
	Fetch(ctx context.Context, req workflow.FetchRequest) (workflow.LearningResponse, error)
	Update(ctx context.Context, req workflow.UpdateRequest) (workflow.LearningResponse, error)
	EvaluateAssessment(ctx context.Context, req workflow.EvaluateAssessmentRequest) (workflow.EvaluateAssessmentResponse, error)
}

// Handler is the thin HTTP layer over the workflow service. It owns envelope
// decoding and error translation only; all business rules live in the service.
type Handler struct {
	workflows WorkflowService
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewHandler(workflows WorkflowService, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{workflows: workflows, logger: logger, metrics: m}
}

// workflowEnvelope is the single-endpoint request shape: a discriminator plus
// the union of every action's parameters. Unknown fields are ignored.
type workflowEnvelope struct {
	Action string `json:"action"`

	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Email      string `json:"email"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`

	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	Plan      string `json:"plan"`

	CourseID         string         `json:"courseId"`
	CourseName       string         `json:"courseName"`
	Progress         map[string]int `json:"progress"`
	CompletedModules *int           `json:"completedModules"`
	TotalModules     *int           `json:"totalModules"`

	Answers []assessment.Answer `json:"answers"`
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleWorkflow dispatches the action envelope to the matching workflow
// operation. An authenticated bearer token pins the subject: its token subject
// overrides whatever externalId the body carries.
func (h *Handler) HandleWorkflow(w http.ResponseWriter, r *http.Request) {
	var env workflowEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.writeError(w, r, env.Action, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if subject := middleware.GetSubject(r.Context()); subject != "" {
		env.ExternalID = subject
	}

	ctx := r.Context()
	var (
		data any
		err  error
	)
	switch env.Action {
	case "create_order":
		data, err = h.workflows.CreateOrder(ctx, workflow.CreateOrderRequest{
			Amount:   env.Amount,
			Currency: env.Currency,
			Receipt:  env.Receipt,
		})
	case "verify_payment":
		data, err = h.workflows.VerifyPayment(ctx, workflow.VerifyPaymentRequest{
			ExternalID: env.ExternalID,
			OrderID:    env.OrderID,
			PaymentID:  env.PaymentID,
			Signature:  env.Signature,
			Plan:       env.Plan,
			Amount:     env.Amount,
			Currency:   env.Currency,
			Name:       env.Name,
			Email:      env.Email,
		})
	case "fetch":
		data, err = h.workflows.Fetch(ctx, workflow.FetchRequest{
			ExternalID: env.ExternalID,
			CourseID:   env.CourseID,
			Name:       env.Name,
			Email:      env.Email,
		})
	case "update":
		data, err = h.workflows.Update(ctx, workflow.UpdateRequest{
			ExternalID:       env.ExternalID,
			CourseID:         env.CourseID,
			Name:             env.Name,
			Email:            env.Email,
			Progress:         env.Progress,
			CompletedModules: env.CompletedModules,
			TotalModules:     env.TotalModules,
		})
	case "evaluateAssessment":
		data, err = h.workflows.EvaluateAssessment(ctx, workflow.EvaluateAssessmentRequest{
			ExternalID: env.ExternalID,
			CourseID:   env.CourseID,
			CourseName: env.CourseName,
			Name:       env.Name,
			Email:      env.Email,
			Answers:    env.Answers,
		})
	default:
		err = dErrors.New(dErrors.CodeBadRequest, "unknown action").WithDetails("workflow")
	}

	if err != nil {
		h.writeError(w, r, env.Action, err)
		return
	}
	if h.metrics != nil {
		h.metrics.WorkflowRequests.WithLabelValues(env.Action, "success").Inc()
	}
	h.writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var de *dErrors.Error
	status := http.StatusInternalServerError
	if errors.As(err, &de) {
		status = dErrors.ToHTTPStatus(de.Code)
	}
	if status >= 500 {
		h.logger.ErrorContext(r.Context(), "workflow request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"action", action,
			"error", err.Error(),
		)
	}
	if h.metrics != nil {
		label := action
		if label == "" {
			label = "unknown"
		}
		h.metrics.WorkflowRequests.WithLabelValues(label, "error").Inc()
	}
	h.writeJSON(w, status, errorEnvelope{
		Success: false,
		Error:   dErrors.MessageOf(err),
		Details: dErrors.DetailsOf(err),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err.Error())
	}
}

// HandleHealth is a liveness endpoint; readiness of downstream systems is not
// checked here so the pod survives gateway or database blips.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
