package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/poofware/timeclock-service/internal/constants"
	"github.com/poofware/timeclock-service/internal/dtos"
	"github.com/poofware/timeclock-service/internal/services"
	"github.com/poofware/timeclock-service/internal/utils"
)

var adminValidate = validator.New()

// AdminController serves employee management, admin timesheet views/exports,
// manual backfill, and administrative punch deletion.
type AdminController struct {
	adminSvc     *services.EmployeeAdminService
	timesheetSvc *services.TimesheetService
	exportSvc    *services.ExportService
	rolloverSvc  *services.RolloverService
}

func NewAdminController(
	adminSvc *services.EmployeeAdminService,
	timesheetSvc *services.TimesheetService,
	exportSvc *services.ExportService,
	rolloverSvc *services.RolloverService,
) *AdminController {
	return &AdminController{
		adminSvc:     adminSvc,
		timesheetSvc: timesheetSvc,
		exportSvc:    exportSvc,
		rolloverSvc:  rolloverSvc,
	}
}

// ----------------------------------------------------------------
// POST /api/v1/admin/employees
// ----------------------------------------------------------------
func (c *AdminController) CreateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return
	}
	if err := adminValidate.Struct(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, validationErrors.Error(), nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	resp, err := c.adminSvc.CreateEmployee(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/admin/employees
// ----------------------------------------------------------------
func (c *AdminController) ListEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.adminSvc.ListEmployees(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// PATCH /api/v1/admin/employees/{employeeID}
// ----------------------------------------------------------------
func (c *AdminController) UpdateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathUUID(w, r, "employeeID")
	if !ok {
		return
	}

	var req dtos.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return
	}
	if err := adminValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	resp, err := c.adminSvc.UpdateEmployee(r.Context(), employeeID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/admin/timesheet/{employeeID}
// ----------------------------------------------------------------
func (c *AdminController) TimesheetHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathUUID(w, r, "employeeID")
	if !ok {
		return
	}

	start, end, err := parseTimesheetRange(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), nil)
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
// GET /api/v1/admin/timesheet/{employeeID}/export
// ----------------------------------------------------------------
func (c *AdminController) ExportTimesheetHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathUUID(w, r, "employeeID")
	if !ok {
		return
	}

	start, end, err := parseTimesheetRange(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), nil)
		return
	}

	// Build first so a service failure still produces a JSON error instead of
	// a half-written attachment.
	var buf bytes.Buffer
	filename, svcErr := c.exportSvc.WriteTimesheetXLSX(r.Context(), &buf, employeeID, start, end)
	if svcErr != nil {
		utils.HandleAppError(w, svcErr)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ----------------------------------------------------------------
// POST /api/v1/admin/rollover/backfill/{employeeID}
// ----------------------------------------------------------------
func (c *AdminController) BackfillHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathUUID(w, r, "employeeID")
	if !ok {
		return
	}

	req := dtos.BackfillRequest{Days: constants.BackfillLookbackDays}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
			return
		}
		if err := adminValidate.Struct(&req); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
			return
		}
		if req.Days == 0 {
			req.Days = constants.BackfillLookbackDays
		}
	}

	inserted, err := c.rolloverSvc.EnsureBackfillForEmployee(r.Context(), employeeID, req.Days)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Manual backfill failed for employee %s", employeeID)
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.BackfillResponse{
		EmployeeID:    employeeID,
		DaysChecked:   req.Days,
		InsertedCount: inserted,
	})
}

// ----------------------------------------------------------------
// DELETE /api/v1/admin/punches/{punchID}
// ----------------------------------------------------------------
func (c *AdminController) DeletePunchHandler(w http.ResponseWriter, r *http.Request) {
	punchID, ok := pathUUID(w, r, "punchID")
	if !ok {
		return
	}

	if err := c.adminSvc.DeletePunch(r.Context(), punchID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------
// shared helpers
// ----------------------------------------------------------------

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			fmt.Sprintf("Malformed %s", name), nil, err,
		)
		return uuid.Nil, false
	}
	return id, true
}
