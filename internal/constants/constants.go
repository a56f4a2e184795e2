package constants

import "time"

// Business time rules. The whole service reasons about "days" in this single
// fixed zone; per-employee timezones are deliberately not supported.
const (
	BusinessTimezone = "America/New_York"
)

// Rollover / backfill behavior.
const (
	// BackfillLookbackDays is how many day boundaries the lazy backfill walks
	// when an employee shows up after the scheduler missed them.
	BackfillLookbackDays = 7

	// MinSchedulerDelay floors the midnight timer so a clock hiccup around the
	// boundary cannot re-fire the rollover in a tight loop.
	MinSchedulerDelay = time.Minute

	// DailySweepCronSpec runs the compensating backfill sweep shortly after the
	// scheduled rollover, in business-local time.
	DailySweepCronSpec = "CRON_TZ=America/New_York 10 0 * * *"
)

// Reporting defaults.
const (
	DefaultTimesheetDays = 14
	MaxTimesheetDays     = 92
)
