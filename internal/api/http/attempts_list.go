package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/assessment-tests/internal/assessment"
	auth "github.com/mind-engage/assessment-tests/internal/auth/middleware"
	"github.com/mind-engage/assessment-tests/internal/rbac"
)

// GET /assessment-test/user-assessments
// Always scoped to the caller.
func (s *Server) userAssessments(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.UserAttempts(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /assessment-test/user-assessments/{id}
// Callers without attempt:view-all only see their own attempts; anything
// else is reported as not found.
func (s *Server) userAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.engine.Attempt(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !rbac.Has(rbac.RoleFromContext(r.Context()), rbac.AttemptViewAll) &&
		a.UserID != auth.UserIDFromContext(r.Context()) {
		err = assessment.ErrAttemptNotFound
	}
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GET /admin/user-assessments?user_id=...&subjects=...&completed=true
func (s *Server) allAssessments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := assessment.AttemptFilter{UserID: strings.TrimSpace(q.Get("user_id"))}
	if len(q["subjects"]) > 0 {
		subjects, err := assessment.ParseSubjects(q["subjects"]...)
		if err != nil {
			writeError(w, r, s.log, err)
			return
		}
		f.Subjects = subjects
	}
	switch q.Get("completed") {
	case "true":
		done := true
		f.Completed = &done
	case "false":
		open := false
		f.Completed = &open
	}
	list, err := s.engine.Attempts(r.Context(), f)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DELETE /assessment-test/user-assessments/{id}
func (s *Server) deleteAssessment(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteAttempt(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
