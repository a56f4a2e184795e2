package models

import (
	"time"

	"github.com/google/uuid"
)

type PunchType string

const (
	PunchIn         PunchType = "in"
	PunchOut        PunchType = "out"
	PunchBreakStart PunchType = "break_start"
	PunchBreakEnd   PunchType = "break_end"
)

// PunchSource records who created the event: a real employee action, the
// midnight rollover, or a backfill pass. Synthetic events stay auditable.
type PunchSource string

const (
	SourceEmployee PunchSource = "employee"
	SourceRollover PunchSource = "rollover"
	SourceBackfill PunchSource = "backfill"
)

// PunchEvent is an immutable clock event. OccurredAt is assigned by the store
// on insert (NOW()) unless the rollover engine supplies an explicit instant.
// Rows are never updated; they are deleted only by explicit admin action.
type PunchEvent struct {
	ID         uuid.UUID   `json:"id"`
	EmployeeID uuid.UUID   `json:"employee_id"`
	Type       PunchType   `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Source     PunchSource `json:"source"`

	CreatedAt time.Time `json:"created_at"`
}
