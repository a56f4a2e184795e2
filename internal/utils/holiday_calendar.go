package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// create once at init
var usFed = cal.NewBusinessCalendar()

func init() {
	usFed.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
}

// IsUSFedHoliday reports whether the given civil date falls on a US federal
// holiday. Timesheet rows carry the flag so payroll can spot holiday work.
func IsUSFedHoliday(d CivilDate) bool {
	t := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, businessLoc)
	ok, _, _ := usFed.IsHoliday(t)
	return ok
}
