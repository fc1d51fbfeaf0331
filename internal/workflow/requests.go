package workflow

import "coursegate/internal/assessment"

// Requests are flat parameter bags, one per recognized action. The transport
// layer decodes the inbound envelope into these; validation of required fields
// happens in the service so every caller gets the same rules.

type CreateOrderRequest struct {
	Amount   float64
	Currency string
	Receipt  string
}

type VerifyPaymentRequest struct {
	ExternalID string
	OrderID    string
	PaymentID  string
	Signature  string
	Plan       string
	Amount     float64
	Currency   string
	Name       string
	Email      string
}

type FetchRequest struct {
	ExternalID string
	CourseID   string
	Name       string
	Email      string
}

type UpdateRequest struct {
	ExternalID       string
	CourseID         string
	Name             string
	Email            string
	Progress         map[string]int
	CompletedModules *int
	TotalModules     *int
}

type EvaluateAssessmentRequest struct {
	ExternalID string
	CourseID   string
	CourseName string
	Name       string
	Email      string
	Answers    []assessment.Answer
}
