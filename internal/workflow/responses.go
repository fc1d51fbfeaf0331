package workflow

import (
	"time"

	"coursegate/internal/assessment"
)

// Degraded steps are named explicitly in responses so observability does not
// depend on log scraping.
const (
	DegradedProfile  = "profile"
	DegradedTracking = "completion_tracking"
)

type VerifyPaymentResponse struct {
	SubjectID       string    `json:"subjectId"`
	Plan            string    `json:"plan"`
	Status          string    `json:"status"`
	PeriodStart     time.Time `json:"periodStart"`
	PeriodEnd       time.Time `json:"periodEnd"`
	DuplicateCharge bool      `json:"duplicateCharge,omitempty"`
	Degraded        []string  `json:"degraded,omitempty"`
}

type LearningResponse struct {
	SubjectID           string         `json:"subjectId"`
	CourseID            string         `json:"courseId"`
	Progress            map[string]int `json:"progress"`
	CompletedModules    int            `json:"completedModules"`
	TotalModules        int            `json:"totalModules"`
	AssessmentAttempted bool           `json:"assessmentAttempted"`
	AssessmentPassed    bool           `json:"assessmentPassed"`
	AssessmentScore     int            `json:"assessmentScore"`
	CompletedAt         *time.Time     `json:"completedAt,omitempty"`
	Degraded            []string       `json:"degraded,omitempty"`
}

type CredentialOutcome struct {
	Status           string `json:"status"`
	CredentialID     string `json:"credentialId,omitempty"`
	VerificationCode string `json:"verificationCode,omitempty"`
}

type EvaluateAssessmentResponse struct {
	SubjectID  string                      `json:"subjectId"`
	CourseID   string                      `json:"courseId"`
	Score      int                         `json:"score"`
	Passed     bool                        `json:"passed"`
	Correct    int                         `json:"correct"`
	Total      int                         `json:"total"`
	Breakdown  []assessment.QuestionResult `json:"breakdown"`
	Credential *CredentialOutcome          `json:"credential,omitempty"`
	Degraded   []string                    `json:"degraded,omitempty"`
}
