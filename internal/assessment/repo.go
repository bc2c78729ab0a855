package assessment

import "context"

// TestFilter selects test definitions. Zero fields are ignored.
type TestFilter struct {
	Subjects []Subject // set membership
	Level    int       // equality when > 0
}

// AttemptFilter selects attempt records. Zero fields are ignored.
type AttemptFilter struct {
	UserID    string
	Subjects  []Subject
	Completed *bool
}

// TestStore persists test definitions. FindByID and FindOne report a
// missing record with ok=false, not an error.
type TestStore interface {
	Find(ctx context.Context, f TestFilter) ([]TestDefinition, error)
	FindByID(ctx context.Context, id string) (TestDefinition, bool, error)
	FindOne(ctx context.Context, f TestFilter) (TestDefinition, bool, error)
	Insert(ctx context.Context, t TestDefinition) error
	Update(ctx context.Context, t TestDefinition) (TestDefinition, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AttemptStore persists attempt records.
//
// Insert must fail with ErrOpenAttemptExists when the user already has an
// incomplete attempt for the subject. Complete must apply only when the
// record is still incomplete and fail with ErrAlreadyCompleted otherwise.
type AttemptStore interface {
	Find(ctx context.Context, f AttemptFilter) ([]AttemptRecord, error)
	FindByID(ctx context.Context, id string) (AttemptRecord, bool, error)
	Insert(ctx context.Context, a AttemptRecord) error
	Complete(ctx context.Context, id string, c Completion) (AttemptRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
}

func containsSubject(list []Subject, s Subject) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func (f TestFilter) match(t TestDefinition) bool {
	if len(f.Subjects) > 0 && !containsSubject(f.Subjects, t.Subject) {
		return false
	}
	if f.Level > 0 && t.Level != f.Level {
		return false
	}
	return true
}

func (f AttemptFilter) match(a AttemptRecord) bool {
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if len(f.Subjects) > 0 && !containsSubject(f.Subjects, a.Subject) {
		return false
	}
	if f.Completed != nil && a.Completed != *f.Completed {
		return false
	}
	return true
}
