// Package jobs runs the background sweeps (cron, UTC):
// a nightly streak check and the weekly participation award, both bounded
// to users who were active in the trailing week.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/verdantedu/greenledger/internal/common"
	"github.com/verdantedu/greenledger/internal/config"
	"github.com/verdantedu/greenledger/internal/features/credits"
)

// ActivityIndex lists recently active students. Only students receive
// sweep bonuses; the implementation must filter by role.
type ActivityIndex interface {
	ActiveStudentIDsSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

// StreakChecker is the streak detector.
type StreakChecker interface {
	CheckStreak(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Awarder is the ledger writer, used for the participation bonus.
type Awarder interface {
	Award(ctx context.Context, userID uuid.UUID, kind credits.ActivityKind, details credits.ActivityDetails) (*credits.AwardResult, error)
}

// Scheduler owns the cron instance and the sweep implementations.
type Scheduler struct {
	cron     *cron.Cron
	activity ActivityIndex
	streaks  StreakChecker
	awarder  Awarder
	cfg      *config.Config
}

// NewScheduler creates a scheduler pinned to UTC, matching the streak
// detector's day reduction.
func NewScheduler(activity ActivityIndex, streaks StreakChecker, awarder Awarder, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		activity: activity,
		streaks:  streaks,
		awarder:  awarder,
		cfg:      cfg,
	}
}

// Start registers and launches the background jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.StreakSweepSchedule, func() {
		log.Info("[CRON] Streak sweep")
		if err := s.StreakSweep(ctx); err != nil {
			log.WithError(err).Error("[CRON] Streak sweep failed")
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.ParticipationSchedule, func() {
		log.Info("[CRON] Weekly participation awards")
		if err := s.ParticipationSweep(ctx); err != nil {
			log.WithError(err).Error("[CRON] Participation sweep failed")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Info("Job scheduler started (UTC)")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Job scheduler stopped")
}

// StreakSweep runs the streak detector for every student active in the
// trailing week. Individual failures are logged and skipped so one bad
// user cannot stall the sweep.
func (s *Scheduler) StreakSweep(ctx context.Context) error {
	ids, err := s.activity.ActiveStudentIDsSince(ctx, common.WeekAgo(time.Now()))
	if err != nil {
		return err
	}

	awarded := 0
	for _, id := range ids {
		ok, err := s.streaks.CheckStreak(ctx, id)
		if err != nil {
			log.WithError(err).WithField("user_id", id).Error("Streak check failed")
			continue
		}
		if ok {
			awarded++
		}
	}

	log.WithFields(log.Fields{
		"checked": len(ids),
		"awarded": awarded,
	}).Info("Streak sweep finished")
	return nil
}

// ParticipationSweep grants the weekly participation bonus to every
// student with at least one ledger entry in the trailing week.
func (s *Scheduler) ParticipationSweep(ctx context.Context) error {
	ids, err := s.activity.ActiveStudentIDsSince(ctx, common.WeekAgo(time.Now()))
	if err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := s.awarder.Award(ctx, id, credits.ActivityWeeklyParticipation, credits.ActivityDetails{}); err != nil {
			log.WithError(err).WithField("user_id", id).Error("Participation award failed")
		}
	}

	log.WithField("awarded", len(ids)).Info("Participation sweep finished")
	return nil
}
