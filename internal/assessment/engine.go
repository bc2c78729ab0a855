package assessment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/assessment-tests/internal/grading"
	"github.com/mind-engage/assessment-tests/internal/logger"
)

// Event types written to the event recorder.
const (
	EventAttemptStarted   = "AttemptStarted"
	EventAttemptSubmitted = "AttemptSubmitted"
)

// EventRecorder receives attempt lifecycle events. Failures are logged and
// never fail the operation that produced the event.
type EventRecorder interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

// Engine computes eligibility, starts attempts following level progression
// and scores submissions.
type Engine struct {
	tests    TestStore
	attempts AttemptStore
	grader   grading.Grader
	events   EventRecorder
	subjects SubjectSet
	log      *logger.Logger
	now      func() time.Time
	newID    func() string
}

type EngineOption func(*Engine)

func WithEvents(r EventRecorder) EngineOption      { return func(e *Engine) { e.events = r } }
func WithSubjects(s SubjectSet) EngineOption       { return func(e *Engine) { e.subjects = s } }
func WithLogger(l *logger.Logger) EngineOption     { return func(e *Engine) { e.log = l } }
func WithClock(now func() time.Time) EngineOption  { return func(e *Engine) { e.now = now } }
func WithIDGenerator(f func() string) EngineOption { return func(e *Engine) { e.newID = f } }

func NewEngine(tests TestStore, attempts AttemptStore, opts ...EngineOption) *Engine {
	e := &Engine{
		tests:    tests,
		attempts: attempts,
		grader:   grading.NewDefaultGrader(),
		log:      logger.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ---- eligibility ----

// Eligibility returns one summary per requested subject, in request order.
// Duplicates are answered once per occurrence.
func (e *Engine) Eligibility(ctx context.Context, userID string, subjects []Subject) ([]Eligibility, error) {
	out, err := e.eligibility(ctx, userID, subjects)
	if err != nil {
		return nil, opErr("failed to fetch subjects level", err)
	}
	return out, nil
}

func (e *Engine) eligibility(ctx context.Context, userID string, subjects []Subject) ([]Eligibility, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidInput("user id is required")
	}
	if len(subjects) == 0 {
		return nil, invalidInput("at least one subject is required")
	}
	if err := e.subjects.Check(subjects...); err != nil {
		return nil, err
	}

	var (
		attempts []AttemptRecord
		tests    []TestDefinition
		done     = true
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attempts, err = e.attempts.Find(gctx, AttemptFilter{UserID: userID, Subjects: subjects, Completed: &done})
		return storeErr("find user assessment tests", err)
	})
	g.Go(func() error {
		var err error
		tests, err = e.tests.Find(gctx, TestFilter{Subjects: subjects})
		return storeErr("find assessment tests", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	completed := map[Subject]int{}
	for _, a := range attempts {
		if a.Completed {
			completed[a.Subject]++
		}
	}
	total := map[Subject]int{}
	for _, t := range tests {
		total[t.Subject]++
	}

	out := make([]Eligibility, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, Eligibility{
			Subject:    s,
			LevelCount: completed[s],
			TotalCount: total[s],
			Enabled:    completed[s] < total[s],
		})
	}
	return out, nil
}

// ---- start ----

type startOutcome int

const (
	outcomeResume startOutcome = iota
	outcomeCreate
)

// startPlan is the decision taken from a user's attempt history in one subject.
type startPlan struct {
	outcome   startOutcome
	existing  AttemptRecord // outcomeResume
	nextLevel int           // outcomeCreate
}

func planStart(history []AttemptRecord) startPlan {
	for _, a := range history {
		if !a.Completed {
			return startPlan{outcome: outcomeResume, existing: a}
		}
	}
	return startPlan{outcome: outcomeCreate, nextLevel: len(history) + 1}
}

// StartAttempt returns the attempt the user should work on next: the open
// one if it exists, otherwise a new attempt at the next level. created is
// false when an open attempt was resumed.
func (e *Engine) StartAttempt(ctx context.Context, subject Subject, userID string) (a AttemptRecord, created bool, err error) {
	a, created, err = e.startAttempt(ctx, subject, userID)
	if err != nil {
		return AttemptRecord{}, false, opErr("failed to start test", err)
	}
	return a, created, nil
}

func (e *Engine) startAttempt(ctx context.Context, subject Subject, userID string) (AttemptRecord, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return AttemptRecord{}, false, invalidInput("user id is required")
	}
	if err := e.subjects.Check(subject); err != nil {
		return AttemptRecord{}, false, err
	}

	history, err := e.attempts.Find(ctx, AttemptFilter{UserID: userID, Subjects: []Subject{subject}})
	if err != nil {
		return AttemptRecord{}, false, storeErr("find user assessment tests", err)
	}

	plan := planStart(history)
	if plan.outcome == outcomeResume {
		e.log.Info("resuming attempt", "attempt_id", plan.existing.ID, "user_id", userID, "subject", subject)
		return plan.existing, false, nil
	}

	def, ok, err := e.tests.FindOne(ctx, TestFilter{Subjects: []Subject{subject}, Level: plan.nextLevel})
	if err != nil {
		return AttemptRecord{}, false, storeErr("find assessment test", err)
	}
	if !ok {
		return AttemptRecord{}, false, exhausted(subject)
	}

	now := e.now()
	rec := AttemptRecord{
		ID:               e.newID(),
		AssessmentTestID: def.ID,
		TestName:         def.Name,
		UserID:           userID,
		Subject:          subject,
		UserAnswers:      []string{},
		CreatedAt:        now,
		LastUpdated:      now,
	}
	if err := e.attempts.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrOpenAttemptExists) {
			// a concurrent start for the same user and subject won the insert
			open, err := e.openAttempt(ctx, subject, userID)
			return open, false, err
		}
		return AttemptRecord{}, false, storeErr("insert user assessment test", err)
	}

	e.log.Info("attempt started", "attempt_id", rec.ID, "user_id", userID, "subject", subject, "level", def.Level)
	e.record(ctx, EventAttemptStarted, rec.ID, map[string]any{
		"userId":           userID,
		"subject":          subject,
		"level":            def.Level,
		"assessmentTestId": def.ID,
	})
	return rec, true, nil
}

func (e *Engine) openAttempt(ctx context.Context, subject Subject, userID string) (AttemptRecord, error) {
	open := false
	list, err := e.attempts.Find(ctx, AttemptFilter{UserID: userID, Subjects: []Subject{subject}, Completed: &open})
	if err != nil {
		return AttemptRecord{}, storeErr("find user assessment tests", err)
	}
	if len(list) == 0 {
		return AttemptRecord{}, ErrOpenAttemptExists
	}
	return list[0], nil
}

// ---- submit ----

// Submit scores answers for an attempt and closes it. An attempt is scored
// at most once.
func (e *Engine) Submit(ctx context.Context, attemptID string, answers []string) (AttemptRecord, error) {
	return e.SubmitFor(ctx, "", attemptID, answers)
}

// SubmitFor is Submit restricted to attempts owned by userID. An empty
// userID skips the ownership check. Attempts owned by someone else are
// reported as not found.
func (e *Engine) SubmitFor(ctx context.Context, userID, attemptID string, answers []string) (AttemptRecord, error) {
	a, err := e.submit(ctx, userID, attemptID, answers)
	if err != nil {
		return AttemptRecord{}, opErr("failed to finish test", err)
	}
	return a, nil
}

func (e *Engine) submit(ctx context.Context, userID, attemptID string, answers []string) (AttemptRecord, error) {
	if answers == nil {
		answers = []string{}
	}
	a, ok, err := e.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return AttemptRecord{}, storeErr("find user assessment test", err)
	}
	if !ok || (userID != "" && a.UserID != userID) {
		return AttemptRecord{}, ErrAttemptNotFound
	}
	if a.Completed {
		return AttemptRecord{}, ErrAlreadyCompleted
	}

	def, ok, err := e.tests.FindByID(ctx, a.AssessmentTestID)
	if err != nil {
		return AttemptRecord{}, storeErr("find assessment test", err)
	}
	if !ok {
		return AttemptRecord{}, ErrTestNotFound
	}

	res, err := e.grader.Grade(def.AnswerKeys(), answers)
	if errors.Is(err, grading.ErrAnswerCount) {
		return AttemptRecord{}, ErrInvalidAnswerCount
	}
	if err != nil {
		return AttemptRecord{}, err
	}

	updated, err := e.attempts.Complete(ctx, attemptID, Completion{
		Score:       res.Score,
		Passed:      res.Passed,
		UserAnswers: append([]string{}, answers...),
		At:          e.now(),
	})
	if err != nil {
		return AttemptRecord{}, storeErr("update user assessment test", err)
	}

	e.log.Info("attempt submitted", "attempt_id", updated.ID, "user_id", updated.UserID,
		"subject", updated.Subject, "score", res.Score, "passed", res.Passed)
	e.record(ctx, EventAttemptSubmitted, updated.ID, map[string]any{
		"userId":  updated.UserID,
		"subject": updated.Subject,
		"score":   res.Score,
		"max":     res.Max,
		"passed":  res.Passed,
	})
	return updated, nil
}

// ---- attempt listing / admin ----

// UserAttempts lists every attempt owned by userID.
func (e *Engine) UserAttempts(ctx context.Context, userID string) ([]AttemptRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidInput("user id is required")
	}
	return e.Attempts(ctx, AttemptFilter{UserID: userID})
}

func (e *Engine) Attempts(ctx context.Context, f AttemptFilter) ([]AttemptRecord, error) {
	list, err := e.attempts.Find(ctx, f)
	if err != nil {
		return nil, storeErr("find user assessment tests", err)
	}
	return list, nil
}

func (e *Engine) Attempt(ctx context.Context, id string) (AttemptRecord, error) {
	a, ok, err := e.attempts.FindByID(ctx, id)
	if err != nil {
		return AttemptRecord{}, storeErr("find user assessment test", err)
	}
	if !ok {
		return AttemptRecord{}, ErrAttemptNotFound
	}
	return a, nil
}

// DeleteAttempt removes an attempt record. Administrative only.
func (e *Engine) DeleteAttempt(ctx context.Context, id string) error {
	ok, err := e.attempts.Delete(ctx, id)
	if err != nil {
		return storeErr("delete user assessment test", err)
	}
	if !ok {
		return ErrAttemptNotFound
	}
	return nil
}

func (e *Engine) record(ctx context.Context, typ, key string, payload any) {
	if e.events == nil {
		return
	}
	if err := e.events.Record(ctx, typ, key, payload); err != nil {
		e.log.Warn("event log append failed", "type", typ, "key", key, "error", err)
	}
}
