package routes

const (
	Health = "/health"

	PunchIn         = "/api/v1/punch/in"
	PunchOut        = "/api/v1/punch/out"
	PunchBreakStart = "/api/v1/punch/break-start"
	PunchBreakEnd   = "/api/v1/punch/break-end"

	TimeclockStatus = "/api/v1/timeclock/status"
	Timesheet       = "/api/v1/timesheet"

	AdminEmployees       = "/api/v1/admin/employees"
	AdminEmployeeByID    = "/api/v1/admin/employees/{employeeID}"
	AdminTimesheet       = "/api/v1/admin/timesheet/{employeeID}"
	AdminTimesheetExport = "/api/v1/admin/timesheet/{employeeID}/export"
	AdminBackfill        = "/api/v1/admin/rollover/backfill/{employeeID}"
	AdminPunchByID       = "/api/v1/admin/punches/{punchID}"
)
