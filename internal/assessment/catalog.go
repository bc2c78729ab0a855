package assessment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTestName = "Test Name"

// Catalog is plain CRUD over test definitions.
type Catalog struct {
	tests    TestStore
	subjects SubjectSet
	now      func() time.Time
	newID    func() string
}

func NewCatalog(tests TestStore, subjects SubjectSet) *Catalog {
	return &Catalog{
		tests:    tests,
		subjects: subjects,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (c *Catalog) Create(ctx context.Context, t TestDefinition) (TestDefinition, error) {
	t, err := c.normalize(t)
	if err != nil {
		return TestDefinition{}, err
	}
	if t.ID == "" {
		t.ID = c.newID()
	}
	t.LastUpdated = c.now()
	if err := c.tests.Insert(ctx, t); err != nil {
		return TestDefinition{}, storeErr("insert assessment test", err)
	}
	return t, nil
}

func (c *Catalog) List(ctx context.Context) ([]TestDefinition, error) {
	list, err := c.tests.Find(ctx, TestFilter{})
	if err != nil {
		return nil, storeErr("find assessment tests", err)
	}
	return list, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (TestDefinition, error) {
	t, ok, err := c.tests.FindByID(ctx, id)
	if err != nil {
		return TestDefinition{}, storeErr("find assessment test", err)
	}
	if !ok {
		return TestDefinition{}, ErrTestNotFound
	}
	return t, nil
}

// Update replaces the whole definition and returns the stored result.
func (c *Catalog) Update(ctx context.Context, t TestDefinition) (TestDefinition, error) {
	if strings.TrimSpace(t.ID) == "" {
		return TestDefinition{}, invalidInput("assessment test id is required")
	}
	t, err := c.normalize(t)
	if err != nil {
		return TestDefinition{}, err
	}
	t.LastUpdated = c.now()
	updated, ok, err := c.tests.Update(ctx, t)
	if err != nil {
		return TestDefinition{}, storeErr("update assessment test", err)
	}
	if !ok {
		return TestDefinition{}, ErrTestNotFound
	}
	return updated, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalidInput("assessment test id is required")
	}
	ok, err := c.tests.Delete(ctx, id)
	if err != nil {
		return storeErr("delete assessment test", err)
	}
	if !ok {
		return ErrTestNotFound
	}
	return nil
}

func (c *Catalog) normalize(t TestDefinition) (TestDefinition, error) {
	if err := c.subjects.Check(t.Subject); err != nil {
		return TestDefinition{}, err
	}
	if t.Level < 1 {
		return TestDefinition{}, invalidInput("level must be a positive integer")
	}
	if strings.TrimSpace(t.Name) == "" {
		t.Name = defaultTestName
	}
	if t.TestQuestions == nil {
		t.TestQuestions = []Question{}
	}
	for i, q := range t.TestQuestions {
		if q.Choices == nil {
			t.TestQuestions[i].Choices = []Choice{}
		}
	}
	return t, nil
}
