package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/poofware/timeclock-service/internal/utils"
)

// ExportService renders timesheets as XLSX workbooks for payroll.
type ExportService struct {
	timesheetSvc *TimesheetService
}

func NewExportService(timesheetSvc *TimesheetService) *ExportService {
	return &ExportService{timesheetSvc: timesheetSvc}
}

const exportSheetName = "Timesheet"

// WriteTimesheetXLSX builds the employee's timesheet for [start, end] and
// streams the workbook to w. Returns the suggested filename.
func (s *ExportService) WriteTimesheetXLSX(ctx context.Context, w io.Writer, employeeID uuid.UUID, start, end utils.CivilDate) (string, error) {
	ts, err := s.timesheetSvc.Timesheet(ctx, employeeID, start, end)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			utils.Logger.WithError(closeErr).Warn("Failed to close export workbook")
		}
	}()

	f.SetSheetName("Sheet1", exportSheetName)

	_ = f.SetCellValue(exportSheetName, "A1", ts.EmployeeName)
	_ = f.SetCellValue(exportSheetName, "A2", fmt.Sprintf("%s through %s", ts.StartDate, ts.EndDate))

	headers := []string{"Date", "First In", "Last Out", "Punches", "Holiday", "Hours"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		_ = f.SetCellValue(exportSheetName, cell, h)
	}

	row := 5
	for _, day := range ts.Days {
		_ = f.SetCellValue(exportSheetName, fmt.Sprintf("A%d", row), day.Date)
		if len(day.Punches) > 0 {
			first := day.Punches[0].OccurredAt.In(utils.BusinessLocation())
			last := day.Punches[len(day.Punches)-1].OccurredAt.In(utils.BusinessLocation())
			_ = f.SetCellValue(exportSheetName, fmt.Sprintf("B%d", row), first.Format("15:04:05"))
			_ = f.SetCellValue(exportSheetName, fmt.Sprintf("C%d", row), last.Format("15:04:05"))
		}
		_ = f.SetCellValue(exportSheetName, fmt.Sprintf("D%d", row), len(day.Punches))
		if day.IsHoliday {
			_ = f.SetCellValue(exportSheetName, fmt.Sprintf("E%d", row), "yes")
		}
		_ = f.SetCellValue(exportSheetName, fmt.Sprintf("F%d", row), day.Hours)
		row++
	}

	_ = f.SetCellValue(exportSheetName, fmt.Sprintf("A%d", row), "Total")
	_ = f.SetCellValue(exportSheetName, fmt.Sprintf("F%d", row), ts.TotalHours)

	_ = f.SetColWidth(exportSheetName, "A", "A", 12)
	_ = f.SetColWidth(exportSheetName, "B", "F", 10)

	if _, err := f.WriteTo(w); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("timesheet_%s_%s_%s.xlsx", sanitizeName(ts.EmployeeName), ts.StartDate, ts.EndDate)
	return filename, nil
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return time.Now().UTC().Format("20060102")
	}
	return string(out)
}
