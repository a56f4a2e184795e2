package dtos

import (
	"time"

	"github.com/google/uuid"
)

type CreateEmployeeRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// UpdateEmployeeRequest carries partial updates; nil fields are untouched.
type UpdateEmployeeRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Active    *bool   `json:"active,omitempty"`
}

type EmployeeDTO struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type BackfillRequest struct {
	Days int `json:"days" validate:"omitempty,min=1,max=31"`
}

type BackfillResponse struct {
	EmployeeID    uuid.UUID `json:"employee_id"`
	DaysChecked   int       `json:"days_checked"`
	InsertedCount int       `json:"inserted_count"`
}
