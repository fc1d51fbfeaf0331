// Package tracking updates the cross-system completion-tracking record. The
// whole package is explicitly non-critical: faults here are logged and flagged
// degraded by callers, never propagated.
package tracking

import "context"

// Tracker records that a subject completed a course with a given score.
type Tracker interface {
	RecordCompletion(ctx context.Context, subjectID, courseID string, score int) error
}
