package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLStore persists tests and attempts through database/sql. Queries use
// $N placeholders, which both the pgx and modernc sqlite drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Tests() TestStore       { return sqlTests{s.db} }
func (s *SQLStore) Attempts() AttemptStore { return sqlAttempts{s.db} }

// ---- tests ----

type sqlTests struct{ db *sql.DB }

const testColumns = `id,name,subject,level,questions_json,last_updated`

func (s sqlTests) Find(ctx context.Context, f TestFilter) ([]TestDefinition, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Subjects) > 0 {
		where = append(where, "subject IN ("+placeholders(len(args)+1, len(f.Subjects))+")")
		for _, sub := range f.Subjects {
			args = append(args, string(sub))
		}
	}
	if f.Level > 0 {
		args = append(args, f.Level)
		where = append(where, fmt.Sprintf("level=$%d", len(args)))
	}
	q := `SELECT ` + testColumns + ` FROM assessment_tests`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY subject, level"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TestDefinition{}
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s sqlTests) FindByID(ctx context.Context, id string) (TestDefinition, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+testColumns+` FROM assessment_tests WHERE id=$1`, id)
	t, err := scanTest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TestDefinition{}, false, nil
	}
	if err != nil {
		return TestDefinition{}, false, err
	}
	return t, true, nil
}

func (s sqlTests) FindOne(ctx context.Context, f TestFilter) (TestDefinition, bool, error) {
	list, err := s.Find(ctx, f)
	if err != nil || len(list) == 0 {
		return TestDefinition{}, false, err
	}
	return list[0], true, nil
}

func (s sqlTests) Insert(ctx context.Context, t TestDefinition) error {
	qj, err := json.Marshal(t.TestQuestions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO assessment_tests (`+testColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.Name, string(t.Subject), t.Level, string(qj), t.LastUpdated.UnixMilli())
	if isUniqueViolation(err) {
		return ErrDuplicateLevel
	}
	return err
}

func (s sqlTests) Update(ctx context.Context, t TestDefinition) (TestDefinition, bool, error) {
	qj, err := json.Marshal(t.TestQuestions)
	if err != nil {
		return TestDefinition{}, false, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE assessment_tests
		SET name=$1, subject=$2, level=$3, questions_json=$4, last_updated=$5
		WHERE id=$6`,
		t.Name, string(t.Subject), t.Level, string(qj), t.LastUpdated.UnixMilli(), t.ID)
	if isUniqueViolation(err) {
		return TestDefinition{}, false, ErrDuplicateLevel
	}
	if err != nil {
		return TestDefinition{}, false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return TestDefinition{}, false, nil
	}
	return s.FindByID(ctx, t.ID)
}

func (s sqlTests) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessment_tests WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ---- attempts ----

type sqlAttempts struct{ db *sql.DB }

const attemptColumns = `id,assessment_test_id,test_name,user_id,subject,user_answers_json,completed,passed,score,created_at,last_updated`

func (s sqlAttempts) Find(ctx context.Context, f AttemptFilter) ([]AttemptRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(f.Subjects) > 0 {
		where = append(where, "subject IN ("+placeholders(len(args)+1, len(f.Subjects))+")")
		for _, sub := range f.Subjects {
			args = append(args, string(sub))
		}
	}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		where = append(where, fmt.Sprintf("completed=$%d", len(args)))
	}
	q := `SELECT ` + attemptColumns + ` FROM user_assessment_tests`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AttemptRecord{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s sqlAttempts) FindByID(ctx context.Context, id string) (AttemptRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM user_assessment_tests WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AttemptRecord{}, false, nil
	}
	if err != nil {
		return AttemptRecord{}, false, err
	}
	return a, true, nil
}

func (s sqlAttempts) Insert(ctx context.Context, a AttemptRecord) error {
	aj, err := json.Marshal(nonNil(a.UserAnswers))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO user_assessment_tests (`+attemptColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.AssessmentTestID, a.TestName, a.UserID, string(a.Subject), string(aj),
		a.Completed, a.Passed, a.Score, a.CreatedAt.UnixMilli(), a.LastUpdated.UnixMilli())
	if isUniqueViolation(err) {
		return ErrOpenAttemptExists
	}
	return err
}

// Complete closes the attempt only while it is still incomplete, so two
// racing submits cannot both be persisted. The closed row is returned by the
// same statement that writes it.
func (s sqlAttempts) Complete(ctx context.Context, id string, c Completion) (AttemptRecord, error) {
	aj, err := json.Marshal(nonNil(c.UserAnswers))
	if err != nil {
		return AttemptRecord{}, err
	}
	row := s.db.QueryRowContext(ctx, `UPDATE user_assessment_tests
		SET completed=$1, passed=$2, score=$3, user_answers_json=$4, last_updated=$5
		WHERE id=$6 AND NOT completed
		RETURNING `+attemptColumns,
		true, c.Passed, c.Score, string(aj), c.At.UnixMilli(), id)
	a, err := scanAttempt(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return AttemptRecord{}, err
	}
	// nothing was written: either the id is unknown or another submit won
	_, ok, err := s.FindByID(ctx, id)
	if err != nil {
		return AttemptRecord{}, err
	}
	if !ok {
		return AttemptRecord{}, ErrAttemptNotFound
	}
	return AttemptRecord{}, ErrAlreadyCompleted
}

func (s sqlAttempts) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_assessment_tests WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ---- helpers ----

type scanner interface {
	Scan(dest ...any) error
}

func scanTest(sc scanner) (TestDefinition, error) {
	var (
		t       TestDefinition
		subject string
		qjson   string
		updated int64
	)
	if err := sc.Scan(&t.ID, &t.Name, &subject, &t.Level, &qjson, &updated); err != nil {
		return TestDefinition{}, err
	}
	t.Subject = Subject(subject)
	t.LastUpdated = time.UnixMilli(updated).UTC()
	if err := json.Unmarshal([]byte(qjson), &t.TestQuestions); err != nil {
		return TestDefinition{}, fmt.Errorf("decode questions of %s: %w", t.ID, err)
	}
	if t.TestQuestions == nil {
		t.TestQuestions = []Question{}
	}
	return t, nil
}

func scanAttempt(sc scanner) (AttemptRecord, error) {
	var (
		a                AttemptRecord
		subject, ajson   string
		created, updated int64
	)
	if err := sc.Scan(&a.ID, &a.AssessmentTestID, &a.TestName, &a.UserID, &subject, &ajson,
		&a.Completed, &a.Passed, &a.Score, &created, &updated); err != nil {
		return AttemptRecord{}, err
	}
	a.Subject = Subject(subject)
	a.CreatedAt = time.UnixMilli(created).UTC()
	a.LastUpdated = time.UnixMilli(updated).UTC()
	if err := json.Unmarshal([]byte(ajson), &a.UserAnswers); err != nil {
		return AttemptRecord{}, fmt.Errorf("decode answers of %s: %w", a.ID, err)
	}
	a.UserAnswers = nonNil(a.UserAnswers)
	return a, nil
}

// placeholders renders "$start,$start+1,..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ",")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") // sqlite
}
