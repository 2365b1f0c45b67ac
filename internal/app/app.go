// Package app assembles the application: configuration, database,
// migrations, services, and the HTTP server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/oratoria/oratoria-backend/internal/adapter/postgres"
	cardrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/card"
	masteryrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/mastery"
	logrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/practicelog"
	sessionrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/session"
	speechrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/speech"
	"github.com/oratoria/oratoria-backend/internal/auth"
	"github.com/oratoria/oratoria-backend/internal/config"
	"github.com/oratoria/oratoria-backend/internal/service/practice"
	"github.com/oratoria/oratoria-backend/internal/transport/middleware"
	"github.com/oratoria/oratoria-backend/internal/transport/rest"
	"github.com/oratoria/oratoria-backend/migrations"
)

// systemClock provides wall-clock time to the service layer.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// jwtValidator adapts the JWT manager to the middleware's validator
// interface.
type jwtValidator struct {
	mgr *auth.JWTManager
}

func (v jwtValidator) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	return v.mgr.ValidateAccessToken(token)
}

// Run is the application entry point. It loads configuration, connects to
// the database, applies migrations, wires the services, and serves HTTP
// until the context is canceled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := migrate(ctx, cfg.Database); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	txm := postgres.NewTxManager(pool)

	svc := practice.NewService(
		logger,
		speechrepo.New(pool),
		cardrepo.New(pool),
		masteryrepo.New(pool),
		sessionrepo.New(pool),
		logrepo.New(pool),
		txm,
		systemClock{},
		cfg.SRS.ToDomain(),
		cfg.Practice.ToDomain(),
	)

	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	mux := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(pool, BuildVersion()),
		Speech:  rest.NewSpeechHandler(svc, logger),
		Session: rest.NewSessionHandler(svc, logger),
		Stats:   rest.NewStatsHandler(svc, logger),
	})

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwtValidator{mgr: jwtMgr}),
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// migrate applies all pending embedded migrations. Goose requires a
// database/sql connection, so a short-lived one is opened alongside the pool.
func migrate(ctx context.Context, cfg config.DatabaseConfig) error {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return err
	}
	return nil
}
