package dtos

import (
	"time"

	"github.com/google/uuid"
)

// PunchDTO is a single clock event as returned to clients.
type PunchDTO struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source"`
}

// PunchResponse is returned by the four punch endpoints.
type PunchResponse struct {
	Punch PunchDTO `json:"punch"`
	State string   `json:"state"`
}

// StatusResponse describes the caller's current clock state.
type StatusResponse struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	State      string    `json:"state"`
	TodayDate  string    `json:"today_date"`
	TodayHours float64   `json:"today_hours"`
	LastPunch  *PunchDTO `json:"last_punch,omitempty"`
}
