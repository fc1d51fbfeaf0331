package profile

import "time"

const (
	RoleLearner = "learner"

	StatusActive      = "active"
	StatusDeactivated = "deactivated"
)

// Profile holds display data keyed by canonical identity. Created lazily on
// first workflow touch; later touches only fill fields that are still empty.
type Profile struct {
	SubjectID   string
	DisplayName string
	Email       string
	Role        string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
