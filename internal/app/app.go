// Package app initializes every component of the service.
// app.go is the assembly point: DB pool, migrations, repositories,
// services, HTTP server and the job scheduler.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/verdantedu/greenledger/internal/api"
	"github.com/verdantedu/greenledger/internal/config"
	"github.com/verdantedu/greenledger/internal/db/postgres"
	"github.com/verdantedu/greenledger/internal/features/credits"
	"github.com/verdantedu/greenledger/internal/features/ranking"
	"github.com/verdantedu/greenledger/internal/features/streak"
	"github.com/verdantedu/greenledger/internal/features/users"
	"github.com/verdantedu/greenledger/internal/jobs"
)

// App holds the assembled components.
type App struct {
	HTTP      *http.Server
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
}

// New creates and wires the application. Initialization order matters:
// storage first, then services, then the surfaces that depend on them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// === 2. Repositories ===
	userRepo := users.NewRepository(pool)
	creditRepo := credits.NewRepository(pool)

	// === 3. Services ===
	userService := users.NewService(userRepo)
	creditService := credits.NewService(creditRepo, userRepo)
	rankingService := ranking.NewService(userRepo, creditRepo, cfg.LeaderboardLimit)
	streakService := streak.NewService(creditRepo, creditService, cfg.StreakWindowDays, cfg.StreakRequiredDays)

	// === 4. HTTP server ===
	server := api.NewServer(creditService, rankingService, streakService, creditRepo, userService, pool)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Router(),
	}

	// === 5. Job scheduler ===
	scheduler := jobs.NewScheduler(creditRepo, streakService, creditService, cfg)

	return &App{
		HTTP:      httpServer,
		Scheduler: scheduler,
		DB:        pool,
	}, nil
}

// runMigrations applies the embedded migrations in order.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002CreditEntries},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		log.Infof("Migration %d applied", m.version)
	}

	return nil
}

// Migrations are embedded so the binary is self-contained to deploy.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255) NOT NULL,
    class_type VARCHAR(20) NOT NULL DEFAULT 'engineering',
    role VARCHAR(20) NOT NULL DEFAULT 'student',
    total_credits INTEGER NOT NULL DEFAULT 0 CHECK (total_credits >= 0),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_role_credits ON users(role, total_credits DESC);
`

var migration002CreditEntries = `
CREATE TABLE IF NOT EXISTS credit_entries (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    project_id UUID,
    activity_kind VARCHAR(50) NOT NULL,
    amount INTEGER NOT NULL CHECK (amount >= 1),
    description TEXT,
    verified_by UUID,
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_credit_entries_user_id ON credit_entries(user_id);
CREATE INDEX IF NOT EXISTS idx_credit_entries_user_created ON credit_entries(user_id, created_at DESC);
`
