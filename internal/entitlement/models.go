package entitlement

import "time"

const (
	StatusActive = "active"
)

// Entitlement grants a subject access to paid features for a bounded period.
// Keyed uniquely by canonical identity: a new purchase overwrites the period
// bounds, it never stacks them.
type Entitlement struct {
	SubjectID       string
	Plan            string
	Status          string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	GrantedBySystem bool
}

// GrantResult reports the applied entitlement. Duplicate is set when the
// charge id was already applied and the extension was suppressed; the
// returned entitlement is then the unmodified current row.
type GrantResult struct {
	Entitlement Entitlement
	Duplicate   bool
}
