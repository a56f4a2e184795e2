package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/repositories"
	"github.com/poofware/timeclock-service/internal/utils"
)

// RolloverService splits work sessions that span a business-local midnight
// into two sessions, one ending the prior day and one starting the new day,
// so daily totals attribute correctly.
//
// Synthetic events around a boundary T are laid out with second offsets so
// their order survives second-precision timestamps:
//
//	break_end(T-1s) < out(T) < in(T+0) < break_start(T+1s)
//
// where out lands on the prior day's 23:59:59 and in on the new day's
// 00:00:00. Each piece is inserted at most once: a window check skips pieces
// that already exist, the store's (employee_id, type, occurred_at) uniqueness
// constraint absorbs anything the check raced past, and a per-employee lock
// keeps a scheduled run and a lazy backfill from interleaving at all.
type RolloverService struct {
	empRepo   repositories.EmployeeRepository
	punchRepo repositories.PunchEventRepository

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	// test seam
	now func() time.Time
}

func NewRolloverService(
	empRepo repositories.EmployeeRepository,
	punchRepo repositories.PunchEventRepository,
) *RolloverService {
	return &RolloverService{
		empRepo:   empRepo,
		punchRepo: punchRepo,
		locks:     make(map[uuid.UUID]*sync.Mutex),
		now:       time.Now,
	}
}

// lockEmployee serializes rollover/backfill writers per employee.
func (s *RolloverService) lockEmployee(id uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// RunRolloverForBoundary processes one midnight boundary for every active
// employee and returns how many employees received synthetic events. The pass
// aborts on the first store failure; the caller decides whether to retry.
func (s *RolloverService) RunRolloverForBoundary(ctx context.Context, boundary time.Time) (int, error) {
	ids, err := s.empRepo.ListActiveIDs(ctx)
	if err != nil {
		return 0, err
	}

	affected := 0
	for _, id := range ids {
		inserted, empErr := s.rolloverEmployee(ctx, id, boundary, models.SourceRollover)
		if empErr != nil {
			return affected, fmt.Errorf("rollover for employee %s: %w", id, empErr)
		}
		if inserted > 0 {
			affected++
		}
	}
	return affected, nil
}

// EnsureBackfillForEmployee applies the boundary logic for each of the last
// `days` civil-day boundaries, oldest first, and returns how many synthetic
// events were inserted. It compensates for scheduler downtime and is safe to
// invoke on every request.
func (s *RolloverService) EnsureBackfillForEmployee(ctx context.Context, employeeID uuid.UUID, days int) (int, error) {
	inserted := 0
	today := utils.CivilDateOf(s.now())
	for i := days - 1; i >= 0; i-- {
		day := today.AddDays(-i)
		boundary := utils.MidnightInstant(day)
		n, err := s.rolloverEmployee(ctx, employeeID, boundary, models.SourceBackfill)
		if err != nil {
			return inserted, fmt.Errorf("backfill boundary %s: %w", day.Key(), err)
		}
		inserted += n
	}
	return inserted, nil
}

// RunDailySweep backfills the most recent boundary for every active employee.
// Unlike the scheduled rollover pass it keeps going when one employee fails,
// since it exists to mop up after partial failures in the first place.
func (s *RolloverService) RunDailySweep(ctx context.Context) error {
	ids, err := s.empRepo.ListActiveIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, empErr := s.EnsureBackfillForEmployee(ctx, id, 1); empErr != nil {
			utils.Logger.WithError(empErr).Errorf("Daily sweep failed for employee %s", id)
		}
	}
	return nil
}

// rolloverEmployee ensures the punch log reflects a clean day cut at the given
// boundary (the UTC instant of a business-local midnight) for one employee.
// Returns the number of synthetic events inserted.
func (s *RolloverService) rolloverEmployee(
	ctx context.Context,
	employeeID uuid.UUID,
	boundary time.Time,
	source models.PunchSource,
) (int, error) {
	unlock := s.lockEmployee(employeeID)
	defer unlock()

	newDay := utils.CivilDateOf(boundary)
	priorDay := newDay.AddDays(-1)
	endOfPriorDay := utils.EndOfDayInstant(priorDay)
	startOfNewDay := utils.MidnightInstant(newDay)

	history, err := s.punchRepo.ListUpTo(ctx, employeeID, endOfPriorDay)
	if err != nil {
		return 0, err
	}

	state := StateAt(history, endOfPriorDay)
	if state == StateOut {
		return 0, nil
	}

	// Idempotency window bracketing the cut. If this query fails we abort the
	// employee rather than risk inserting duplicates blind.
	window, err := s.punchRepo.ListRange(ctx, employeeID,
		endOfPriorDay.Add(-time.Second),
		startOfNewDay.Add(2*time.Second),
	)
	if err != nil {
		return 0, err
	}

	var hasOut, hasIn, hasBreakEnd, hasBreakStart bool
	for _, e := range window {
		switch e.Type {
		case models.PunchOut:
			hasOut = true
		case models.PunchIn:
			hasIn = true
		case models.PunchBreakEnd:
			if e.OccurredAt.Before(startOfNewDay) {
				hasBreakEnd = true
			}
		case models.PunchBreakStart:
			if !e.OccurredAt.Before(startOfNewDay) {
				hasBreakStart = true
			}
		}
	}

	inserted := 0
	insert := func(pt models.PunchType, at time.Time) error {
		ok, insErr := s.punchRepo.InsertIfAbsent(ctx, &models.PunchEvent{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Type:       pt,
			OccurredAt: at,
			Source:     source,
		})
		if insErr != nil {
			return insErr
		}
		if ok {
			inserted++
		}
		return nil
	}

	// Insertion order matters: break_end must land strictly before out, and
	// break_start strictly after in, even at second precision.
	if state == StateBreak && !hasBreakEnd {
		if err := insert(models.PunchBreakEnd, endOfPriorDay.Add(-time.Second)); err != nil {
			return inserted, err
		}
	}
	if !hasOut {
		if err := insert(models.PunchOut, endOfPriorDay); err != nil {
			return inserted, err
		}
	}
	if !hasIn {
		if err := insert(models.PunchIn, startOfNewDay); err != nil {
			return inserted, err
		}
	}
	if state == StateBreak && !hasBreakStart {
		if err := insert(models.PunchBreakStart, startOfNewDay.Add(time.Second)); err != nil {
			return inserted, err
		}
	}

	if inserted > 0 {
		utils.Logger.WithFields(logrus.Fields{
			"employee_id": employeeID,
			"boundary":    newDay.Key(),
			"inserted":    inserted,
			"state":       state,
			"source":      source,
		}).Info("Split midnight-spanning session")
	}
	return inserted, nil
}
