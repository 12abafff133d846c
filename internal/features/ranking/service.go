// Package ranking — service.go contains the leaderboard and statistics
// logic. The service is stateless and reads through the injected stores.
package ranking

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/verdantedu/greenledger/internal/common"
	"github.com/verdantedu/greenledger/internal/features/users"
)

// UserStore is the balance/account storage the rankings read from.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	TopStudents(ctx context.Context, classType users.ClassType, limit int) ([]*users.User, error)
	CountStudentsWithMoreCredits(ctx context.Context, total int) (int, error)
}

// LedgerStore is the slice of the ledger the statistics aggregate over.
type LedgerStore interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	SumByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

// Service answers leaderboard, rank and stats queries.
type Service struct {
	users  UserStore
	ledger LedgerStore
	limit  int // default leaderboard size
	now    func() time.Time
}

func NewService(userStore UserStore, ledger LedgerStore, defaultLimit int) *Service {
	return &Service{users: userStore, ledger: ledger, limit: defaultLimit, now: time.Now}
}

// WithClock overrides the time source used for the rolling windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Leaderboard returns the top students by total credits, optionally
// filtered by class track. limit <= 0 falls back to the configured
// default. Ordering is total credits descending; ties keep account
// creation order, so the result is stable across calls.
func (s *Service) Leaderboard(ctx context.Context, classType users.ClassType, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.limit
	}

	top, err := s.users.TopStudents(ctx, classType, limit)
	if err != nil {
		return nil, fmt.Errorf("building leaderboard: %w", err)
	}

	out := make([]*LeaderboardEntry, 0, len(top))
	for _, u := range top {
		out = append(out, &LeaderboardEntry{
			ID:           u.ID,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			ClassType:    u.ClassType,
			TotalCredits: u.TotalCredits,
		})
	}
	return out, nil
}

// Rank returns 1 + the number of students whose balance is strictly
// greater than this user's. Tied users therefore share the same rank, and
// the top student is rank 1.
func (s *Service) Rank(ctx context.Context, userID uuid.UUID) (int, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	higher, err := s.users.CountStudentsWithMoreCredits(ctx, u.TotalCredits)
	if err != nil {
		return 0, fmt.Errorf("computing rank: %w", err)
	}
	return higher + 1, nil
}

// Stats returns the aggregate credit statistics for one user. A user id
// that does not resolve is an error (common.ErrUserNotFound), never a
// zero-filled result.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, common.ErrUserNotFound
	}

	count, err := s.ledger.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting transactions: %w", err)
	}

	now := s.now()
	weekly, err := s.ledger.SumByUserSince(ctx, userID, common.WeekAgo(now))
	if err != nil {
		return nil, fmt.Errorf("summing weekly credits: %w", err)
	}
	monthly, err := s.ledger.SumByUserSince(ctx, userID, common.MonthAgo(now))
	if err != nil {
		return nil, fmt.Errorf("summing monthly credits: %w", err)
	}

	higher, err := s.users.CountStudentsWithMoreCredits(ctx, u.TotalCredits)
	if err != nil {
		return nil, fmt.Errorf("computing rank: %w", err)
	}

	return &UserStats{
		TotalCredits:      u.TotalCredits,
		TotalTransactions: count,
		WeeklyCredits:     weekly,
		MonthlyCredits:    monthly,
		Rank:              higher + 1,
		AveragePerWeek:    int(math.Round(float64(u.TotalCredits) / 4)),
	}, nil
}
