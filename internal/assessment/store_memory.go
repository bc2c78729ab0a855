package assessment

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps tests and attempts in process. Tests are listed by
// subject and level, attempts in insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	tests    map[string]TestDefinition
	attempts map[string]AttemptRecord
	seq      int64
	order    map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tests:    map[string]TestDefinition{},
		attempts: map[string]AttemptRecord{},
		order:    map[string]int64{},
	}
}

func (m *MemoryStore) Tests() TestStore       { return memoryTests{m} }
func (m *MemoryStore) Attempts() AttemptStore { return memoryAttempts{m} }

func (m *MemoryStore) stamp(id string) {
	m.seq++
	m.order[id] = m.seq
}

func (m *MemoryStore) sorted(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return m.order[ids[i]] < m.order[ids[j]] })
}

type memoryTests struct{ m *MemoryStore }

func (s memoryTests) Find(_ context.Context, f TestFilter) ([]TestDefinition, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	ids := make([]string, 0, len(s.m.tests))
	for id, t := range s.m.tests {
		if f.match(t) {
			ids = append(ids, id)
		}
	}
	out := make([]TestDefinition, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneTest(s.m.tests[id]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Level < out[j].Level
	})
	return out, nil
}

func (s memoryTests) FindByID(_ context.Context, id string) (TestDefinition, bool, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	t, ok := s.m.tests[id]
	return cloneTest(t), ok, nil
}

func (s memoryTests) FindOne(ctx context.Context, f TestFilter) (TestDefinition, bool, error) {
	list, _ := s.Find(ctx, f)
	if len(list) == 0 {
		return TestDefinition{}, false, nil
	}
	return list[0], true, nil
}

func (s memoryTests) Insert(_ context.Context, t TestDefinition) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.levelTaken(t) {
		return ErrDuplicateLevel
	}
	s.m.tests[t.ID] = cloneTest(t)
	return nil
}

func (s memoryTests) Update(_ context.Context, t TestDefinition) (TestDefinition, bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.tests[t.ID]; !ok {
		return TestDefinition{}, false, nil
	}
	if s.m.levelTaken(t) {
		return TestDefinition{}, false, ErrDuplicateLevel
	}
	s.m.tests[t.ID] = cloneTest(t)
	return cloneTest(t), true, nil
}

func (s memoryTests) Delete(_ context.Context, id string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.tests[id]; !ok {
		return false, nil
	}
	delete(s.m.tests, id)
	return true, nil
}

// levelTaken reports whether another definition already holds t's subject and level.
func (m *MemoryStore) levelTaken(t TestDefinition) bool {
	for id, other := range m.tests {
		if id != t.ID && other.Subject == t.Subject && other.Level == t.Level {
			return true
		}
	}
	return false
}

type memoryAttempts struct{ m *MemoryStore }

func (s memoryAttempts) Find(_ context.Context, f AttemptFilter) ([]AttemptRecord, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	ids := make([]string, 0)
	for id, a := range s.m.attempts {
		if f.match(a) {
			ids = append(ids, id)
		}
	}
	s.m.sorted(ids)
	out := make([]AttemptRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneAttempt(s.m.attempts[id]))
	}
	return out, nil
}

func (s memoryAttempts) FindByID(_ context.Context, id string) (AttemptRecord, bool, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	a, ok := s.m.attempts[id]
	return cloneAttempt(a), ok, nil
}

func (s memoryAttempts) Insert(_ context.Context, a AttemptRecord) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if !a.Completed {
		for _, other := range s.m.attempts {
			if !other.Completed && other.UserID == a.UserID && other.Subject == a.Subject {
				return ErrOpenAttemptExists
			}
		}
	}
	s.m.attempts[a.ID] = cloneAttempt(a)
	s.m.stamp(a.ID)
	return nil
}

func (s memoryAttempts) Complete(_ context.Context, id string, c Completion) (AttemptRecord, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.attempts[id]
	if !ok {
		return AttemptRecord{}, ErrAttemptNotFound
	}
	if a.Completed {
		return AttemptRecord{}, ErrAlreadyCompleted
	}
	a.Completed = true
	a.Score = c.Score
	a.Passed = c.Passed
	a.UserAnswers = append([]string{}, c.UserAnswers...)
	a.LastUpdated = c.At
	s.m.attempts[id] = a
	return cloneAttempt(a), nil
}

func (s memoryAttempts) Delete(_ context.Context, id string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.attempts[id]; !ok {
		return false, nil
	}
	delete(s.m.attempts, id)
	delete(s.m.order, id)
	return true, nil
}

func cloneTest(t TestDefinition) TestDefinition {
	qs := make([]Question, len(t.TestQuestions))
	for i, q := range t.TestQuestions {
		q.Choices = append([]Choice(nil), q.Choices...)
		qs[i] = q
	}
	t.TestQuestions = qs
	return t
}

func cloneAttempt(a AttemptRecord) AttemptRecord {
	a.UserAnswers = append([]string{}, a.UserAnswers...)
	return a
}
