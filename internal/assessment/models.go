package assessment

// Question is a canonical question row as stored for a course. Only the id and
// the correct choice matter for scoring; prompt text lives with the content
// system.
type Question struct {
	ID            string `json:"id"`
	CourseID      string `json:"courseId"`
	CorrectChoice string `json:"correctChoice"`
}

// Answer is a learner-submitted answer.
type Answer struct {
	QuestionID string `json:"questionId"`
	Choice     string `json:"selected"`
}

// QuestionResult is the per-question breakdown returned to the caller.
type QuestionResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
}

// Result is the outcome of scoring one submission.
type Result struct {
	Score       int              `json:"score"`
	Passed      bool             `json:"passed"`
	Correct     int              `json:"correct"`
	Total       int              `json:"total"`
	PerQuestion []QuestionResult `json:"breakdown"`
}
