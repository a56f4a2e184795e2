package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/poofware/timeclock-service/internal/constants"
	"github.com/poofware/timeclock-service/internal/dtos"
	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/repositories"
	"github.com/poofware/timeclock-service/internal/utils"
)

// TimeclockService handles employee punch actions and the live status view.
// Every entry point runs the lazy backfill first, so a stale session left open
// across missed midnights is split before the request is answered.
type TimeclockService struct {
	empRepo     repositories.EmployeeRepository
	punchRepo   repositories.PunchEventRepository
	rolloverSvc *RolloverService

	now func() time.Time
}

func NewTimeclockService(
	empRepo repositories.EmployeeRepository,
	punchRepo repositories.PunchEventRepository,
	rolloverSvc *RolloverService,
) *TimeclockService {
	return &TimeclockService{
		empRepo:     empRepo,
		punchRepo:   punchRepo,
		rolloverSvc: rolloverSvc,
		now:         time.Now,
	}
}

// allowedTransitions maps the current state to the punch types an employee may
// record. Breaks must be ended before punching out; the calculator tolerates
// looser sequences, but new punches are kept clean at the gate.
var allowedTransitions = map[PunchState][]models.PunchType{
	StateOut:   {models.PunchIn},
	StateIn:    {models.PunchOut, models.PunchBreakStart},
	StateBreak: {models.PunchBreakEnd},
}

func transitionAllowed(state PunchState, pt models.PunchType) bool {
	for _, allowed := range allowedTransitions[state] {
		if allowed == pt {
			return true
		}
	}
	return false
}

func stateAfter(pt models.PunchType) PunchState {
	switch pt {
	case models.PunchIn, models.PunchBreakEnd:
		return StateIn
	case models.PunchBreakStart:
		return StateBreak
	default:
		return StateOut
	}
}

// Punch records a clock event for the employee, store-assigning the instant.
func (s *TimeclockService) Punch(ctx context.Context, employeeID uuid.UUID, pt models.PunchType) (*dtos.PunchResponse, error) {
	if err := s.requireActiveEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if _, err := s.rolloverSvc.EnsureBackfillForEmployee(ctx, employeeID, constants.BackfillLookbackDays); err != nil {
		return nil, err
	}

	now := s.now()
	history, err := s.punchRepo.ListUpTo(ctx, employeeID, now)
	if err != nil {
		return nil, err
	}

	state := StateAt(history, now)
	if !transitionAllowed(state, pt) {
		return nil, &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeInvalidTransition,
			Message:    fmt.Sprintf("cannot punch %s while %s", pt, state),
			Err:        utils.ErrInvalidTransition,
		}
	}

	event := &models.PunchEvent{
		EmployeeID: employeeID,
		Type:       pt,
		Source:     models.SourceEmployee,
		// OccurredAt left zero: the store assigns NOW()
	}
	if err := s.punchRepo.Insert(ctx, event); err != nil {
		return nil, err
	}

	return &dtos.PunchResponse{
		Punch: toPunchDTO(event),
		State: string(stateAfter(pt)),
	}, nil
}

// Status returns the employee's current state and hours worked so far today.
func (s *TimeclockService) Status(ctx context.Context, employeeID uuid.UUID) (*dtos.StatusResponse, error) {
	if err := s.requireActiveEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if _, err := s.rolloverSvc.EnsureBackfillForEmployee(ctx, employeeID, constants.BackfillLookbackDays); err != nil {
		return nil, err
	}

	now := s.now()
	history, err := s.punchRepo.ListUpTo(ctx, employeeID, now)
	if err != nil {
		return nil, err
	}

	today := utils.CivilDateOf(now)
	dayStart := utils.MidnightInstant(today)
	var todayEvents []*models.PunchEvent
	for _, e := range history {
		if !e.OccurredAt.Before(dayStart) {
			todayEvents = append(todayEvents, e)
		}
	}

	resp := &dtos.StatusResponse{
		EmployeeID: employeeID,
		State:      string(StateAt(history, now)),
		TodayDate:  today.Key(),
		TodayHours: roundHours(HoursWorked(todayEvents, &now)),
	}

	last, err := s.punchRepo.GetMostRecent(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		dto := toPunchDTO(last)
		resp.LastPunch = &dto
	}
	return resp, nil
}

func (s *TimeclockService) requireActiveEmployee(ctx context.Context, employeeID uuid.UUID) error {
	emp, err := s.empRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return &utils.AppError{
			StatusCode: http.StatusNotFound,
			Code:       utils.ErrCodeNotFound,
			Message:    "Employee not found",
			Err:        utils.ErrEmployeeNotFound,
		}
	}
	if !emp.Active {
		return &utils.AppError{
			StatusCode: http.StatusForbidden,
			Code:       utils.ErrCodeEmployeeInactive,
			Message:    "Employee is deactivated",
			Err:        utils.ErrEmployeeInactive,
		}
	}
	return nil
}

func toPunchDTO(e *models.PunchEvent) dtos.PunchDTO {
	return dtos.PunchDTO{
		ID:         e.ID,
		Type:       string(e.Type),
		OccurredAt: e.OccurredAt.UTC(),
		Source:     string(e.Source),
	}
}
