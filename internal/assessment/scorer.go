package assessment

import (
	"math"

	"coursegate/internal/platform/config"
	dErrors "coursegate/pkg/domain-errors"
)

// Score grades a submission against the canonical question set.
//
// The denominator is always the canonical question count, not the submitted
// answer count: under-answering silently lowers the score rather than
// erroring. An answer whose question id matches nothing counts as incorrect.
// An empty canonical set is a configuration fault, never a zero score.
func Score(answers []Answer, questions []Question) (Result, error) {
	if len(questions) == 0 {
		return Result{}, dErrors.New(dErrors.CodeInvariantViolation, "no questions configured for course").WithDetails("assessment")
	}

	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	correct := 0
	breakdown := make([]QuestionResult, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		isCorrect := ok && a.Choice == q.CorrectChoice
		if isCorrect {
			correct++
		}
		breakdown = append(breakdown, QuestionResult{QuestionID: a.QuestionID, Correct: isCorrect})
	}

	score := int(math.Round(100 * float64(correct) / float64(len(questions))))
	return Result{
		Score:       score,
		Passed:      score >= config.PassingScore,
		Correct:     correct,
		Total:       len(questions),
		PerQuestion: breakdown,
	}, nil
}
