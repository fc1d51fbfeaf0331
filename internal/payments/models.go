package payments

import "time"

// Status values for a payment record. Records are append-only facts; a
// "verified" row is never mutated afterwards.
const (
	StatusVerified = "verified"
)

// Record is the immutable fact that a payment callback was verified. There is
// deliberately no dedupe key here: duplicates of the same charge are tolerated
// in this table and suppressed at the entitlement layer instead.
type Record struct {
	ID        string
	SubjectID string
	OrderID   string
	ChargeID  string
	Signature string
	Amount    int64
	Currency  string
	Plan      string
	Status    string
	CreatedAt time.Time
}
