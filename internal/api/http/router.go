package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/assessment-tests/internal/assessment"
	auth "github.com/mind-engage/assessment-tests/internal/auth/middleware"
	"github.com/mind-engage/assessment-tests/internal/logger"
	"github.com/mind-engage/assessment-tests/internal/rbac"
)

// Server holds the handler dependencies.
type Server struct {
	catalog *assessment.Catalog
	engine  *assessment.Engine
	log     *logger.Logger
}

type Options struct {
	Catalog *assessment.Catalog
	Engine  *assessment.Engine
	Auth    *auth.AuthService
	Logger  *logger.Logger

	// Login is mounted at /auth/login when EnableLocalAuth is set.
	EnableLocalAuth bool
	Login           auth.LoginOptions

	CORSOrigins    []string
	RequestTimeout time.Duration

	// Ready backs /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}

func NewRouter(o Options) http.Handler {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	s := &Server{catalog: o.Catalog, engine: o.Engine, log: o.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(o.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(o.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if o.Ready != nil {
			if err := o.Ready(r.Context()); err != nil {
				o.Logger.Warn("not ready", "error", err)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	if o.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(o.Auth, o.Login))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(o.Auth))

		pr.Route("/assessment-test", func(ar chi.Router) {
			ar.With(rbac.Require(rbac.TestCreate)).Post("/", s.createTest)
			ar.With(rbac.Require(rbac.TestView)).Get("/", s.listTests)
			ar.With(rbac.Require(rbac.TestUpdate)).Patch("/", s.updateTest)
			ar.With(rbac.Require(rbac.TestDelete)).Delete("/", s.deleteTest)

			ar.With(rbac.Require(rbac.AttemptViewOwn)).Get("/user-assessments", s.userAssessments)
			ar.With(rbac.RequireAny(rbac.AttemptViewOwn, rbac.AttemptViewAll)).Get("/user-assessments/{id}", s.userAssessment)
			ar.With(rbac.Require(rbac.AttemptDelete)).Delete("/user-assessments/{id}", s.deleteAssessment)
			ar.With(rbac.Require(rbac.EligibilityView)).Get("/user-subjects-eligibility", s.eligibility)
			ar.With(rbac.Require(rbac.AttemptStart)).Post("/start-test", s.startTest)
			ar.With(rbac.Require(rbac.AttemptSubmit)).Post("/submit-test", s.submitTest)

			ar.With(rbac.Require(rbac.TestView)).Get("/{id}", s.getTest)
		})

		pr.With(rbac.Require(rbac.AttemptViewAll)).Get("/admin/user-assessments", s.allAssessments)
	})

	return r
}

// RequestLogger logs one line per request through the structured logger.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
