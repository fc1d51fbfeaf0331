package learning

import "time"

// Record tracks a subject's progress through one course. Keyed uniquely by
// (subject, course); created on first touch, updated in place, never deleted.
type Record struct {
	SubjectID           string
	CourseID            string
	Progress            map[string]int
	CompletedModules    int
	TotalModules        int
	AssessmentAttempted bool
	AssessmentPassed    bool
	AssessmentScore     int
	CompletedAt         *time.Time
	UpdatedAt           time.Time
}

// Patch carries caller-supplied progress fields for a merge-update. Nil fields
// mean "not supplied": merge precedence is prefer new, fall back to prior,
// default zero.
type Patch struct {
	Progress         map[string]int
	CompletedModules *int
	TotalModules     *int
}
