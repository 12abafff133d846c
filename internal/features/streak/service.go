// Package streak detects 7-consecutive-day activity streaks and triggers
// the bonus award through the ledger writer.
//
// A streak is "activity on at least the required number of distinct
// calendar days inside the trailing window". Days are reduced in UTC, so
// detection is independent of the server's local zone. With the default
// 7-days-in-7-day-window configuration the condition only holds when the
// window boundary and "today" line up on exactly seven calendar days.
package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/verdantedu/greenledger/internal/common"
	"github.com/verdantedu/greenledger/internal/features/credits"
	"github.com/verdantedu/greenledger/internal/observability"
)

// Ledger is the read side the detector needs.
type Ledger interface {
	TimestampsByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)
}

// Awarder is the write side: the credit ledger writer.
type Awarder interface {
	Award(ctx context.Context, userID uuid.UUID, kind credits.ActivityKind, details credits.ActivityDetails) (*credits.AwardResult, error)
}

// Service is the streak detector.
type Service struct {
	ledger       Ledger
	awarder      Awarder
	windowDays   int
	requiredDays int
	now          func() time.Time
}

func NewService(ledger Ledger, awarder Awarder, windowDays, requiredDays int) *Service {
	return &Service{
		ledger:       ledger,
		awarder:      awarder,
		windowDays:   windowDays,
		requiredDays: requiredDays,
		now:          time.Now,
	}
}

// WithClock overrides the time source. Tests use it to pin the window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CheckStreak reports whether a streak bonus was awarded in this call.
// It collects the user's entry timestamps from the trailing window,
// reduces them to distinct UTC calendar days, and on reaching the required
// count awards streak_bonus (amount 5, auto-verified) through the writer.
// Below the threshold it returns false with no side effects.
func (s *Service) CheckStreak(ctx context.Context, userID uuid.UUID) (bool, error) {
	since := s.now().Add(-time.Duration(s.windowDays) * 24 * time.Hour)

	timestamps, err := s.ledger.TimestampsByUserSince(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("reading streak window: %w", err)
	}

	days := make(map[time.Time]struct{}, s.requiredDays)
	for _, t := range timestamps {
		days[common.DayUTC(t)] = struct{}{}
	}

	if len(days) < s.requiredDays {
		return false, nil
	}

	// The bonus amount is fixed by the streak_bonus rule.
	result, err := s.awarder.Award(ctx, userID, credits.ActivityStreakBonus, credits.ActivityDetails{
		AutoVerify: true,
	})
	if err != nil {
		return false, fmt.Errorf("awarding streak bonus: %w", err)
	}

	observability.StreakBonuses.Inc()
	log.WithFields(log.Fields{
		"user_id": userID,
		"days":    len(days),
		"bonus":   result.CreditsAwarded,
	}).Info("Streak bonus awarded")

	return true, nil
}
