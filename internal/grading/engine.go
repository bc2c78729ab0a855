package grading

import "errors"

// ErrAnswerCount is returned when the number of submitted answers differs
// from the number of answer keys. Nothing is scored in that case.
var ErrAnswerCount = errors.New("invalid number of answers")

// Result is the outcome of grading one submission.
type Result struct {
	Score   int    // number of position-aligned exact matches
	Max     int    // number of questions
	Passed  bool   // every question answered correctly
	Correct []bool // per-question outcome, same order as the keys
}

// Grader scores an ordered answer sheet against ordered answer keys.
type Grader interface {
	Grade(keys, answers []string) (Result, error)
}

type exactGrader struct{}

// NewDefaultGrader returns the all-or-nothing grader: answer i counts only
// when it is byte-for-byte equal to key i. No casefolding or trimming.
func NewDefaultGrader() Grader { return exactGrader{} }

func (exactGrader) Grade(keys, answers []string) (Result, error) {
	if len(keys) != len(answers) {
		return Result{Max: len(keys)}, ErrAnswerCount
	}
	res := Result{Max: len(keys), Correct: make([]bool, len(keys))}
	for i, k := range keys {
		if k == answers[i] {
			res.Score++
			res.Correct[i] = true
		}
	}
	res.Passed = res.Score == res.Max
	return res, nil
}
