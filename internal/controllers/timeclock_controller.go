package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/poofware/timeclock-service/internal/constants"
	"github.com/poofware/timeclock-service/internal/middleware"
	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/services"
	"github.com/poofware/timeclock-service/internal/utils"
)

// TimeclockController serves the employee-facing punch and reporting
// endpoints. The caller's employee ID is the JWT subject claim.
type TimeclockController struct {
	timeclockSvc *services.TimeclockService
	timesheetSvc *services.TimesheetService
}

func NewTimeclockController(
	timeclockSvc *services.TimeclockService,
	timesheetSvc *services.TimesheetService,
) *TimeclockController {
	return &TimeclockController{
		timeclockSvc: timeclockSvc,
		timesheetSvc: timesheetSvc,
	}
}

// ----------------------------------------------------------------
// POST /api/v1/punch/{in,out,break-start,break-end}
// ----------------------------------------------------------------
func (c *TimeclockController) PunchInHandler(w http.ResponseWriter, r *http.Request) {
	c.punch(w, r, models.PunchIn)
}

func (c *TimeclockController) PunchOutHandler(w http.ResponseWriter, r *http.Request) {
	c.punch(w, r, models.PunchOut)
}

func (c *TimeclockController) BreakStartHandler(w http.ResponseWriter, r *http.Request) {
	c.punch(w, r, models.PunchBreakStart)
}

func (c *TimeclockController) BreakEndHandler(w http.ResponseWriter, r *http.Request) {
	c.punch(w, r, models.PunchBreakEnd)
}

func (c *TimeclockController) punch(w http.ResponseWriter, r *http.Request, pt models.PunchType) {
	employeeID, ok := callerEmployeeID(w, r)
	if !ok {
		return
	}

	resp, err := c.timeclockSvc.Punch(r.Context(), employeeID, pt)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/timeclock/status
// ----------------------------------------------------------------
func (c *TimeclockController) StatusHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployeeID(w, r)
	if !ok {
		return
	}

	resp, err := c.timeclockSvc.Status(r.Context(), employeeID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/timesheet?start=YYYY-MM-DD&end=YYYY-MM-DD
// ----------------------------------------------------------------
func (c *TimeclockController) TimesheetHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployeeID(w, r)
	if !ok {
		return
	}

	start, end, err := parseTimesheetRange(r)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), nil,
		)
		return
	}

	resp, svcErr := c.timesheetSvc.Timesheet(r.Context(), employeeID, start, end)
	if svcErr != nil {
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// shared helpers
// ----------------------------------------------------------------

func callerEmployeeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ctxUserID := r.Context().Value(middleware.ContextKeyUserID)
	if ctxUserID == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil,
		)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(ctxUserID.(string))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Malformed userID claim", nil, err,
		)
		return uuid.Nil, false
	}
	return id, true
}

// parseTimesheetRange reads ?start= and ?end= date keys; when absent the range
// defaults to the trailing DefaultTimesheetDays window ending today.
func parseTimesheetRange(r *http.Request) (utils.CivilDate, utils.CivilDate, error) {
	end := utils.CivilDateOf(time.Now())
	start := end.AddDays(-(constants.DefaultTimesheetDays - 1))

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := utils.ParseCivilDate(raw)
		if err != nil {
			return utils.CivilDate{}, utils.CivilDate{}, err
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := utils.ParseCivilDate(raw)
		if err != nil {
			return utils.CivilDate{}, utils.CivilDate{}, err
		}
		end = parsed
	}
	return start, end, nil
}
