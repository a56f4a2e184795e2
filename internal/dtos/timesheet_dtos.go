package dtos

import "github.com/google/uuid"

// TimesheetDayDTO is one civil day of an employee's timesheet. Days are keyed
// "YYYY-MM-DD"; plain string order is chronological.
type TimesheetDayDTO struct {
	Date      string     `json:"date"`
	Hours     float64    `json:"hours"`
	IsHoliday bool       `json:"is_holiday"`
	Punches   []PunchDTO `json:"punches,omitempty"`
}

type TimesheetResponse struct {
	EmployeeID   uuid.UUID         `json:"employee_id"`
	EmployeeName string            `json:"employee_name"`
	StartDate    string            `json:"start_date"`
	EndDate      string            `json:"end_date"`
	Days         []TimesheetDayDTO `json:"days"`
	TotalHours   float64           `json:"total_hours"`
}
