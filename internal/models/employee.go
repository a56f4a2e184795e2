package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a person who punches a clock. Only active employees participate
// in rollover and backfill.
type Employee struct {
	Versioned

	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Active    bool      `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Employee) GetID() string {
	return e.ID.String()
}
