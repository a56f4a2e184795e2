package services

import (
	"sort"
	"time"

	"github.com/poofware/timeclock-service/internal/models"
)

// PunchState is an employee's clock state at some instant. It is derived from
// the punch log and never persisted.
type PunchState string

const (
	StateOut   PunchState = "out"
	StateIn    PunchState = "in"
	StateBreak PunchState = "break"
)

// StateAt resolves the employee's state as of `boundary` by folding over the
// punches at or before it, oldest first. The fold is total: stray events are
// absorbed rather than rejected, and an empty log resolves to out.
func StateAt(events []*models.PunchEvent, boundary time.Time) PunchState {
	eligible := make([]*models.PunchEvent, 0, len(events))
	for _, e := range events {
		if !e.OccurredAt.After(boundary) {
			eligible = append(eligible, e)
		}
	}
	sortPunchesAscending(eligible)

	state := StateOut
	for _, e := range eligible {
		switch e.Type {
		case models.PunchIn:
			state = StateIn
		case models.PunchBreakStart:
			// a break can only start from an open session
			if state == StateIn {
				state = StateBreak
			}
		case models.PunchBreakEnd:
			state = StateIn
		case models.PunchOut:
			state = StateOut
		}
	}
	return state
}

func sortPunchesAscending(events []*models.PunchEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
}
