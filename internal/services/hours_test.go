package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/poofware/timeclock-service/internal/models"
)

var hoursBase = time.Date(2025, time.January, 15, 14, 0, 0, 0, time.UTC)

func punchAt(pt models.PunchType, offset time.Duration) *models.PunchEvent {
	return &models.PunchEvent{
		ID:         uuid.New(),
		EmployeeID: uuid.Nil,
		Type:       pt,
		OccurredAt: hoursBase.Add(offset),
		Source:     models.SourceEmployee,
	}
}

func TestWorkedMinutesSimpleShift(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchIn, 0),
		punchAt(models.PunchOut, 487*time.Minute),
	}
	assert.InDelta(t, 487, WorkedMinutes(events, nil), 1e-9)
}

func TestWorkedMinutesExcludesBreaks(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchIn, 0),
		punchAt(models.PunchBreakStart, 30*time.Minute),
		punchAt(models.PunchBreakEnd, 45*time.Minute),
		punchAt(models.PunchOut, 90*time.Minute),
	}
	// 30 worked before the break plus 45 after; the 15-minute break is excluded
	assert.InDelta(t, 75, WorkedMinutes(events, nil), 1e-9)
}

func TestWorkedMinutesOutWhileOnBreakDoesNotDoubleCount(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchIn, 0),
		punchAt(models.PunchBreakStart, 30*time.Minute),
		punchAt(models.PunchOut, 60*time.Minute),
	}
	// the worked portion was flushed at break_start; out adds nothing more
	assert.InDelta(t, 30, WorkedMinutes(events, nil), 1e-9)
}

func TestWorkedMinutesSecondInRestartsClock(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchIn, 0),
		punchAt(models.PunchIn, 20*time.Minute),
		punchAt(models.PunchOut, 50*time.Minute),
	}
	// time before the second in was never flushed and is abandoned
	assert.InDelta(t, 30, WorkedMinutes(events, nil), 1e-9)
}

func TestWorkedMinutesStrayBreakStartIgnored(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchBreakStart, 0),
		punchAt(models.PunchIn, 10*time.Minute),
		punchAt(models.PunchOut, 40*time.Minute),
	}
	assert.InDelta(t, 30, WorkedMinutes(events, nil), 1e-9)
}

func TestWorkedMinutesStrayBreakEndOpensSession(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchBreakEnd, 0),
		punchAt(models.PunchOut, 25*time.Minute),
	}
	assert.InDelta(t, 25, WorkedMinutes(events, nil), 1e-9)
}

func TestWorkedMinutesOpenEndClosesTrailingSession(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchIn, 0),
	}
	openEnd := hoursBase.Add(95 * time.Minute)
	assert.InDelta(t, 95, WorkedMinutes(events, &openEnd), 1e-9)

	// without openEnd the open session contributes nothing
	assert.InDelta(t, 0, WorkedMinutes(events, nil), 1e-9)
}

func TestWorkedMinutesOpenEndWhileOnBreakAddsNothing(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchIn, 0),
		punchAt(models.PunchBreakStart, 40*time.Minute),
	}
	openEnd := hoursBase.Add(3 * time.Hour)
	// worked portion was flushed at break_start; the open break accrues nothing
	assert.InDelta(t, 40, WorkedMinutes(events, &openEnd), 1e-9)
}

func TestWorkedMinutesStrayOutIgnored(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchOut, 0),
	}
	assert.InDelta(t, 0, WorkedMinutes(events, nil), 1e-9)
}

func TestWorkedMinutesEmpty(t *testing.T) {
	assert.InDelta(t, 0, WorkedMinutes(nil, nil), 1e-9)
}

func TestWorkedMinutesUnsortedInput(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchOut, 90*time.Minute),
		punchAt(models.PunchIn, 0),
		punchAt(models.PunchBreakEnd, 45*time.Minute),
		punchAt(models.PunchBreakStart, 30*time.Minute),
	}
	assert.InDelta(t, 75, WorkedMinutes(events, nil), 1e-9)
}

func TestHoursWorked(t *testing.T) {
	events := []*models.PunchEvent{
		punchAt(models.PunchIn, 0),
		punchAt(models.PunchOut, 90*time.Minute),
	}
	assert.InDelta(t, 1.5, HoursWorked(events, nil), 1e-9)
}
