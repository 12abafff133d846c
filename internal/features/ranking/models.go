// Package ranking computes leaderboards, ranks and per-user aggregate
// statistics from the ledger and balance stores.
// models.go describes the read-only result shapes.
package ranking

import (
	"github.com/google/uuid"

	"github.com/verdantedu/greenledger/internal/features/users"
)

// LeaderboardEntry is one leaderboard row. Only students appear.
type LeaderboardEntry struct {
	ID           uuid.UUID       `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	ClassType    users.ClassType `json:"classType"`
	TotalCredits int             `json:"totalCredits"`
}

// UserStats aggregates one user's credit activity.
// Weekly and monthly are rolling windows (7 and 30 days); the weekly
// window is a subset of the monthly one.
// AveragePerWeek divides the lifetime total by a fixed 4, a rough
// "about a month of history" heuristic rather than actual elapsed time.
type UserStats struct {
	TotalCredits      int `json:"totalCredits"`
	TotalTransactions int `json:"totalTransactions"`
	WeeklyCredits     int `json:"weeklyCredits"`
	MonthlyCredits    int `json:"monthlyCredits"`
	Rank              int `json:"rank"`
	AveragePerWeek    int `json:"averagePerWeek"`
}
