package utils

import (
	"fmt"
	"time"

	"github.com/poofware/timeclock-service/internal/constants"
)

var businessLoc *time.Location

func init() {
	loc, err := time.LoadLocation(constants.BusinessTimezone)
	if err != nil {
		// cmd/main.go blank-imports time/tzdata, so this only happens if the
		// zone name itself is bad; fall back to EST rather than crash.
		loc = time.FixedZone("fallbackEST", -5*3600)
	}
	businessLoc = loc
}

// BusinessLocation returns the fixed business timezone (America/New_York).
func BusinessLocation() *time.Location {
	return businessLoc
}

// CivilDate is a calendar date as observed in the business timezone.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// CivilDateOf returns the business-local calendar date for an absolute instant.
func CivilDateOf(t time.Time) CivilDate {
	local := t.In(businessLoc)
	return CivilDate{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// Key renders the date as zero-padded "YYYY-MM-DD". Plain string comparison of
// keys orders chronologically, which reporting relies on for grouping.
func (d CivilDate) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AddDays does calendar arithmetic through time.AddDate so month and year
// boundaries roll over correctly.
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseCivilDate parses a "YYYY-MM-DD" key.
func ParseCivilDate(key string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", key)
	if err != nil {
		return CivilDate{}, err
	}
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// UTCOffsetMinutes returns the business zone's offset from UTC, in minutes east
// of UTC (-300 during EST, -240 during EDT), for the given calendar date.
// The offset is probed at local noon: DST transitions happen at 02:00, so noon
// is never ambiguous or skipped.
func UTCOffsetMinutes(d CivilDate) int {
	noon := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, businessLoc)
	_, offsetSec := noon.Zone()
	return offsetSec / 60
}

// LocalToInstant returns the UTC instant for a business-local wall clock
// reading. The offset is resolved from the calendar date being converted, not
// from the result, so a wall-clock value is never round-tripped through itself.
func LocalToInstant(year int, month time.Month, day, hour, min, sec int) time.Time {
	wall := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	offset := UTCOffsetMinutes(CivilDate{Year: year, Month: month, Day: day})
	return wall.Add(-time.Duration(offset) * time.Minute)
}

// MidnightInstant is the UTC instant of the date's local midnight, i.e. the
// rollover boundary for that civil day. It is built directly in the business
// zone rather than through the noon-probed offset: on a DST-transition day the
// offset at noon differs from the offset at midnight (the clocks shift at
// 02:00), and the noon offset would land the boundary an hour off. Midnight
// itself always exists in America/New_York, so CivilDateOf round-trips this.
func MidnightInstant(d CivilDate) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, businessLoc).UTC()
}

// EndOfDayInstant is the UTC instant of the date's local 23:59:59, the last
// whole second belonging to that civil day. Like MidnightInstant it is built
// in the business zone, so it is always exactly one second before the next
// day's MidnightInstant, including across DST transitions.
func EndOfDayInstant(d CivilDate) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, businessLoc).UTC()
}
