package http

import (
	"net/http"

	"github.com/mind-engage/assessment-tests/internal/assessment"
	auth "github.com/mind-engage/assessment-tests/internal/auth/middleware"
	"github.com/mind-engage/assessment-tests/internal/rbac"
)

// GET /assessment-test/user-subjects-eligibility?subjects=ANGULAR,RXJS
func (s *Server) eligibility(w http.ResponseWriter, r *http.Request) {
	subjects, err := assessment.ParseSubjects(r.URL.Query()["subjects"]...)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out, err := s.engine.Eligibility(r.Context(), auth.UserIDFromContext(r.Context()), subjects)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /assessment-test/start-test  {"subject": "ANGULAR"}
func (s *Server) startTest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	subject, err := assessment.ParseSubject(req.Subject)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	a, created, err := s.engine.StartAttempt(r.Context(), subject, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, a)
}

// POST /assessment-test/submit-test  {"testId": "...", "answers": ["A", ...]}
// testId is the attempt id returned by start-test.
func (s *Server) submitTest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestID  string   `json:"testId" validate:"required"`
		Answers []string `json:"answers"`
	}
	if !decode(w, r, &req) {
		return
	}
	owner := auth.UserIDFromContext(r.Context())
	if rbac.Has(rbac.RoleFromContext(r.Context()), rbac.AttemptViewAll) {
		owner = ""
	}
	a, err := s.engine.SubmitFor(r.Context(), owner, req.TestID, req.Answers)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
