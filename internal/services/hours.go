package services

import (
	"time"

	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/utils"
)

// WorkedMinutes reduces an ordered punch sequence to total worked minutes,
// excluding break time, in a single forward pass.
//
// openEnd, when non-nil, closes a still-open trailing session: "now" for the
// current day, or end-of-day for a historical day that never got an out.
//
// The pass never fails. Malformed sequences (missing out, stray break events,
// double in) degrade to partial totals under these recovery rules:
//   - `in` simply restarts the clock; unflushed time before it is abandoned.
//   - a stray `break_start` with no open session is ignored.
//   - a stray `break_end` opens a session, as if it were an `in`.
//   - `out` while on break adds nothing further: the worked portion was
//     already flushed when the break started. Adding again would double count.
func WorkedMinutes(events []*models.PunchEvent, openEnd *time.Time) float64 {
	ordered := make([]*models.PunchEvent, len(events))
	copy(ordered, events)
	sortPunchesAscending(ordered)

	var total float64
	var sessionStart time.Time
	open := false
	onBreak := false

	for _, e := range ordered {
		switch e.Type {
		case models.PunchIn:
			sessionStart = e.OccurredAt
			open = true
			onBreak = false

		case models.PunchBreakStart:
			if open && !onBreak {
				total += e.OccurredAt.Sub(sessionStart).Minutes()
				onBreak = true
			} else if !open {
				utils.Logger.Warnf("Ignoring break_start with no open session for employee %s", e.EmployeeID)
			}

		case models.PunchBreakEnd:
			// resume counting; a stray break_end recovers as an `in`
			sessionStart = e.OccurredAt
			open = true
			onBreak = false

		case models.PunchOut:
			if open && !onBreak {
				total += e.OccurredAt.Sub(sessionStart).Minutes()
			}
			open = false
			onBreak = false
		}
	}

	if open && !onBreak && openEnd != nil {
		total += openEnd.Sub(sessionStart).Minutes()
	}
	return total
}

// HoursWorked is WorkedMinutes expressed in hours.
func HoursWorked(events []*models.PunchEvent, openEnd *time.Time) float64 {
	return WorkedMinutes(events, openEnd) / 60
}
