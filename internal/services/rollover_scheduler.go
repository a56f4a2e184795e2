package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/poofware/timeclock-service/internal/constants"
	"github.com/poofware/timeclock-service/internal/utils"
)

// RolloverScheduler fires the rollover engine once per business-local civil
// day, near local midnight, using a one-shot timer that re-arms itself after
// every run. Each re-arm recomputes the delay from the wall clock, so the
// schedule cannot drift, and a failed run still re-arms for the next boundary.
type RolloverScheduler struct {
	svc      *RolloverService
	minDelay time.Duration

	// test seam
	now func() time.Time
}

func NewRolloverScheduler(svc *RolloverService) *RolloverScheduler {
	return &RolloverScheduler{
		svc:      svc,
		minDelay: constants.MinSchedulerDelay,
		now:      time.Now,
	}
}

// NextBoundary returns the UTC instant the timer should fire at: the current
// civil day's midnight plus 24 hours. On DST-shift days that lands up to an
// hour off local midnight, which is harmless: the engine derives the civil day
// from the boundary instant and places synthetic events at exact local times.
func NextBoundary(now time.Time) time.Time {
	today := utils.CivilDateOf(now)
	return utils.MidnightInstant(today).Add(24 * time.Hour)
}

// Start launches the scheduling loop. It runs until ctx is cancelled.
func (s *RolloverScheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *RolloverScheduler) run(ctx context.Context) {
	for {
		now := s.now()
		boundary := NextBoundary(now)
		delay := boundary.Sub(now)
		if delay < s.minDelay {
			// floor the delay so a clock blip at the boundary cannot spin
			delay = s.minDelay
		}

		utils.Logger.WithFields(logrus.Fields{
			"boundary": boundary.UTC().Format(time.RFC3339),
			"delay":    delay.Round(time.Second).String(),
		}).Info("Armed midnight rollover timer")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			utils.Logger.Info("Rollover scheduler stopped")
			return
		case <-timer.C:
		}

		affected, err := s.svc.RunRolloverForBoundary(ctx, boundary)
		if err != nil {
			// re-arm anyway: a transient outage must not disable rollover
			utils.Logger.WithError(err).Error("Midnight rollover run failed; re-arming for next boundary")
			continue
		}
		utils.Logger.WithFields(logrus.Fields{
			"boundary": boundary.UTC().Format(time.RFC3339),
			"affected": affected,
		}).Info("Midnight rollover completed")
	}
}
