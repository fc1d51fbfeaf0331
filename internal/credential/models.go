package credential

import "time"

// IssueStatus is the outcome of one issuance attempt.
type IssueStatus string

const (
	StatusNotEligible   IssueStatus = "not_eligible"
	StatusAlreadyIssued IssueStatus = "already_issued"
	StatusIssued        IssueStatus = "issued"
)

// Credential is an issued certificate. Name, course, score and date are
// snapshotted at issuance so the certificate stays stable even if the source
// records change later. Never mutated after creation except deactivation.
type Credential struct {
	ID               string
	SubjectID        string
	CourseID         string
	HolderName       string
	CourseName       string
	Score            int
	VerificationCode string
	TemplateID       string
	IssuedAt         time.Time
	Active           bool
}

// Template is the shared, rarely-written certificate layout.
type Template struct {
	ID           string
	Name         string
	BodyHTML     string
	Placeholders []string
	IsDefault    bool
	Active       bool
}

// IssueRequest carries everything the issuer needs; the holder name and course
// name are display data copied into the snapshot.
type IssueRequest struct {
	SubjectID  string
	CourseID   string
	CourseName string
	HolderName string
	Score      int
}

// IssueResult reports what happened. CredentialID references the newly issued
// credential for StatusIssued and the pre-existing one for StatusAlreadyIssued.
// Degraded is set when the best-effort completion-tracking update failed.
type IssueResult struct {
	Status           IssueStatus
	CredentialID     string
	VerificationCode string
	Degraded         bool
}
