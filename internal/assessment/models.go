package assessment

import "time"

type Choice struct {
	Value string `json:"value" validate:"required"`
}

type Question struct {
	Question          string   `json:"question" validate:"required"`
	Choices           []Choice `json:"choices" validate:"dive"`
	Answer            string   `json:"answer" validate:"required"`
	CorrectResponse   string   `json:"correctResponse"`
	IncorrectResponse string   `json:"incorrectResponse"`
}

// TestDefinition is one level of a subject's progression.
type TestDefinition struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Subject       Subject    `json:"subject"`
	Level         int        `json:"level"`
	LastUpdated   time.Time  `json:"lastUpdated"`
	TestQuestions []Question `json:"testQuestions"`
}

// AnswerKeys returns the correct answers in question order.
func (t TestDefinition) AnswerKeys() []string {
	keys := make([]string, len(t.TestQuestions))
	for i, q := range t.TestQuestions {
		keys[i] = q.Answer
	}
	return keys
}

// AttemptRecord is a user's attempt at a TestDefinition.
type AttemptRecord struct {
	ID               string    `json:"_id"`
	AssessmentTestID string    `json:"assessmentTestId"`
	TestName         string    `json:"testName"`
	UserID           string    `json:"userId"`
	Subject          Subject   `json:"subject"`
	UserAnswers      []string  `json:"userAnswers"`
	Completed        bool      `json:"completed"`
	Passed           bool      `json:"passed"`
	Score            int       `json:"score"`
	CreatedAt        time.Time `json:"createdAt"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// Eligibility summarizes a user's progress in one subject.
type Eligibility struct {
	Subject    Subject `json:"subject"`
	LevelCount int     `json:"levelCount"` // completed attempts
	TotalCount int     `json:"totalCount"` // catalog levels
	Enabled    bool    `json:"enabled"`
}

// Completion is the single write that closes an attempt.
type Completion struct {
	Score       int
	Passed      bool
	UserAnswers []string
	At          time.Time
}
