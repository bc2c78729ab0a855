package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/assessment-tests/internal/assessment"
)

type testRequest struct {
	ID            string                `json:"_id"`
	Name          string                `json:"name"`
	Subject       string                `json:"subject" validate:"required"`
	Level         int                   `json:"level" validate:"required,gte=1"`
	TestQuestions []assessment.Question `json:"testQuestions" validate:"dive"`
}

func (req testRequest) definition() (assessment.TestDefinition, error) {
	subject, err := assessment.ParseSubject(req.Subject)
	if err != nil {
		return assessment.TestDefinition{}, err
	}
	return assessment.TestDefinition{
		ID:            req.ID,
		Name:          req.Name,
		Subject:       subject,
		Level:         req.Level,
		TestQuestions: req.TestQuestions,
	}, nil
}

// POST /assessment-test
func (s *Server) createTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if !decode(w, r, &req) {
		return
	}
	def, err := req.definition()
	if err == nil {
		def, err = s.catalog.Create(r.Context(), def)
	}
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

// GET /assessment-test
func (s *Server) listTests(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /assessment-test/{id}
func (s *Server) getTest(w http.ResponseWriter, r *http.Request) {
	def, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// PATCH /assessment-test, full replacement keyed by _id.
func (s *Server) updateTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if !decode(w, r, &req) {
		return
	}
	def, err := req.definition()
	if err == nil {
		def, err = s.catalog.Update(r.Context(), def)
	}
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// DELETE /assessment-test  {"id": "..."}
func (s *Server) deleteTest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.catalog.Delete(r.Context(), req.ID); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
