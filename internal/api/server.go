// Package api provides the HTTP surface of the credit engine: award,
// leaderboard, stats, streak checks and entry verification. Handlers stay
// thin — inputs are validated here and everything else happens in the
// feature services.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verdantedu/greenledger/internal/features/credits"
	"github.com/verdantedu/greenledger/internal/features/ranking"
	"github.com/verdantedu/greenledger/internal/features/users"
)

// CreditWriter is the ledger writer surface the API calls.
type CreditWriter interface {
	Award(ctx context.Context, userID uuid.UUID, kind credits.ActivityKind, details credits.ActivityDetails) (*credits.AwardResult, error)
	VerifyEntry(ctx context.Context, entryID, verifierID uuid.UUID) error
}

// RankingReader answers the read-only queries.
type RankingReader interface {
	Leaderboard(ctx context.Context, classType users.ClassType, limit int) ([]*ranking.LeaderboardEntry, error)
	Stats(ctx context.Context, userID uuid.UUID) (*ranking.UserStats, error)
}

// StreakChecker runs the streak detector for one user.
type StreakChecker interface {
	CheckStreak(ctx context.Context, userID uuid.UUID) (bool, error)
}

// HistoryReader lists a user's recent ledger entries.
type HistoryReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*credits.CreditEntry, error)
}

// UserRegistry creates account records. Authentication lives in an
// external system; the engine only needs the rows to exist.
type UserRegistry interface {
	Register(ctx context.Context, u *users.User) error
}

// Pinger reports storage health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the greenledger HTTP API server.
type Server struct {
	writer   CreditWriter
	rank     RankingReader
	streaks  StreakChecker
	history  HistoryReader
	registry UserRegistry
	db       Pinger
}

func NewServer(writer CreditWriter, rank RankingReader, streaks StreakChecker, history HistoryReader, registry UserRegistry, db Pinger) *Server {
	return &Server{writer: writer, rank: rank, streaks: streaks, history: history, registry: registry, db: db}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/users", s.handleCreateUser)

	r.Route("/api/credits", func(r chi.Router) {
		r.Post("/award", s.handleAward)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/entries/{entryID}/verify", s.handleVerify)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/stats", s.handleStats)
			r.Get("/history", s.handleHistory)
			r.Post("/streak-check", s.handleStreakCheck)
		})
	})

	return r
}
