package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/assessment-tests/internal/api/http"
	"github.com/mind-engage/assessment-tests/internal/assessment"
	auth "github.com/mind-engage/assessment-tests/internal/auth/middleware"
	"github.com/mind-engage/assessment-tests/internal/config"
	"github.com/mind-engage/assessment-tests/internal/db"
	"github.com/mind-engage/assessment-tests/internal/logger"
	syncx "github.com/mind-engage/assessment-tests/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode, cfg.LogHashSalt)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	subjects, err := assessment.ParseSubjects(cfg.Subjects...)
	if err != nil {
		log.Fatal("invalid SUBJECTS", "error", err)
	}
	enabled := assessment.NewSubjectSet(subjects...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		log.Fatal("db open failed", "driver", cfg.DBDriver, "error", err)
	}
	defer dbh.Close()

	store := assessment.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)

	catalog := assessment.NewCatalog(store.Tests(), enabled)
	engine := assessment.NewEngine(store.Tests(), store.Attempts(),
		assessment.WithSubjects(enabled),
		assessment.WithEvents(events),
		assessment.WithLogger(log.With("component", "engine")),
	)

	handler := api.NewRouter(api.Options{
		Catalog:         catalog,
		Engine:          engine,
		Auth:            auth.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL),
		Logger:          log.With("component", "http"),
		EnableLocalAuth: cfg.EnableLocalAuth,
		Login: auth.LoginOptions{
			AdminUser:     cfg.AdminUser,
			AdminPassHash: cfg.AdminPassHash,
			AllowDevUsers: cfg.Mode == config.ModeOffline,
		},
		CORSOrigins:    cfg.CORSOrigins(),
		RequestTimeout: cfg.RequestTimeout,
		Ready:          dbh.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "subjects", subjects)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
