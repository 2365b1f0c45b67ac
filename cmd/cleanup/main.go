// Command cleanup abandons practice sessions that have been ACTIVE for
// longer than the configured threshold. Crashed or disconnected clients
// leave such sessions behind, and an active session blocks starting a new
// one. Intended to be invoked by an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/oratoria/oratoria-backend/internal/adapter/postgres"
	"github.com/oratoria/oratoria-backend/internal/adapter/postgres/session"
	"github.com/oratoria/oratoria-backend/internal/app"
	"github.com/oratoria/oratoria-backend/internal/config"
)

// Sessions longer than this are certainly dead: practice runs take minutes.
const staleAfter = 6 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	sessionRepo := session.New(pool)

	cutoff := time.Now().Add(-staleAfter)

	abandoned, err := sessionRepo.AbandonStale(ctx, cutoff)
	if err != nil {
		logger.Error("abandon stale sessions failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff),
		)
		os.Exit(1)
	}

	logger.Info("stale session cleanup completed",
		slog.Int64("abandoned", abandoned),
		slog.Time("cutoff", cutoff),
	)
}
