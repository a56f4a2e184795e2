package services

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/poofware/timeclock-service/internal/constants"
	"github.com/poofware/timeclock-service/internal/dtos"
	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/repositories"
	"github.com/poofware/timeclock-service/internal/utils"
)

// TimesheetService builds per-day reports from the punch log. Day spans are
// derived on every read and never persisted.
type TimesheetService struct {
	empRepo     repositories.EmployeeRepository
	punchRepo   repositories.PunchEventRepository
	rolloverSvc *RolloverService

	now func() time.Time
}

func NewTimesheetService(
	empRepo repositories.EmployeeRepository,
	punchRepo repositories.PunchEventRepository,
	rolloverSvc *RolloverService,
) *TimesheetService {
	return &TimesheetService{
		empRepo:     empRepo,
		punchRepo:   punchRepo,
		rolloverSvc: rolloverSvc,
		now:         time.Now,
	}
}

// Timesheet returns one row per civil day in [start, end], bucketing punches
// by their business-local date. An open session on the current day accrues up
// to "now"; an open session on a past day accrues to that day's end (it can
// only survive that long if backfill was unable to close it).
func (s *TimesheetService) Timesheet(ctx context.Context, employeeID uuid.UUID, start, end utils.CivilDate) (*dtos.TimesheetResponse, error) {
	if start.Key() > end.Key() {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeInvalidPayload,
			Message:    "start date is after end date",
			Err:        utils.ErrInvalidDateRange,
		}
	}
	spanDays := int(utils.MidnightInstant(end).Sub(utils.MidnightInstant(start)).Hours()/24) + 1
	if spanDays > constants.MaxTimesheetDays {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeInvalidPayload,
			Message:    "date range too large",
			Err:        utils.ErrInvalidDateRange,
		}
	}

	emp, err := s.empRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusNotFound,
			Code:       utils.ErrCodeNotFound,
			Message:    "Employee not found",
			Err:        utils.ErrEmployeeNotFound,
		}
	}

	if emp.Active {
		if _, err := s.rolloverSvc.EnsureBackfillForEmployee(ctx, employeeID, constants.BackfillLookbackDays); err != nil {
			return nil, err
		}
	}

	events, err := s.punchRepo.ListRange(ctx, employeeID,
		utils.MidnightInstant(start),
		utils.MidnightInstant(end.AddDays(1)),
	)
	if err != nil {
		return nil, err
	}

	// bucket by civil date key
	byDay := make(map[string][]*models.PunchEvent)
	for _, e := range events {
		key := utils.CivilDateOf(e.OccurredAt).Key()
		byDay[key] = append(byDay[key], e)
	}

	now := s.now()
	todayKey := utils.CivilDateOf(now).Key()

	resp := &dtos.TimesheetResponse{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FirstName + " " + emp.LastName,
		StartDate:    start.Key(),
		EndDate:      end.Key(),
	}

	for d := start; d.Key() <= end.Key(); d = d.AddDays(1) {
		dayEvents := byDay[d.Key()]

		var openEnd *time.Time
		switch {
		case d.Key() == todayKey:
			openEnd = &now
		case d.Key() < todayKey:
			endOfDay := utils.MidnightInstant(d.AddDays(1))
			openEnd = &endOfDay
		}

		punchDTOs := make([]dtos.PunchDTO, 0, len(dayEvents))
		for _, e := range dayEvents {
			punchDTOs = append(punchDTOs, toPunchDTO(e))
		}

		hours := roundHours(HoursWorked(dayEvents, openEnd))
		resp.Days = append(resp.Days, dtos.TimesheetDayDTO{
			Date:      d.Key(),
			Hours:     hours,
			IsHoliday: utils.IsUSFedHoliday(d),
			Punches:   punchDTOs,
		})
		resp.TotalHours += hours
	}
	resp.TotalHours = roundHours(resp.TotalHours)
	return resp, nil
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
