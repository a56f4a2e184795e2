package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/utils"
)

func newTestEmployee(t *testing.T, repo *memEmployeeRepo, active bool) uuid.UUID {
	t.Helper()
	emp := &models.Employee{
		ID:        uuid.New(),
		FirstName: "Test",
		LastName:  "Employee",
		Active:    active,
	}
	require.NoError(t, repo.Create(context.Background(), emp))
	return emp.ID
}

func seedPunch(t *testing.T, repo *memPunchRepo, employeeID uuid.UUID, pt models.PunchType, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &models.PunchEvent{
		EmployeeID: employeeID,
		Type:       pt,
		OccurredAt: at,
		Source:     models.SourceEmployee,
	}))
}

func TestRolloverSplitsOpenSession(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	// clocked in the evening of Jan 15, still in at midnight
	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))

	boundary := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.January, Day: 16})
	affected, err := svc.RunRolloverForBoundary(context.Background(), boundary)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	events := punchRepo.all(id)
	require.Len(t, events, 3)
	assert.Equal(t, models.PunchIn, events[0].Type)

	assert.Equal(t, models.PunchOut, events[1].Type)
	assert.True(t, events[1].OccurredAt.Equal(utils.LocalToInstant(2025, time.January, 15, 23, 59, 59)))
	assert.Equal(t, models.SourceRollover, events[1].Source)

	assert.Equal(t, models.PunchIn, events[2].Type)
	assert.True(t, events[2].OccurredAt.Equal(utils.LocalToInstant(2025, time.January, 16, 0, 0, 0)))
	assert.Equal(t, models.SourceRollover, events[2].Source)
}

func TestRolloverSplitsOpenBreak(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 18, 0, 0))
	seedPunch(t, punchRepo, id, models.PunchBreakStart, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))

	boundary := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.January, Day: 16})
	affected, err := svc.RunRolloverForBoundary(context.Background(), boundary)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	events := punchRepo.all(id)
	require.Len(t, events, 6)

	synthetic := events[2:]
	wantTypes := []models.PunchType{
		models.PunchBreakEnd,
		models.PunchOut,
		models.PunchIn,
		models.PunchBreakStart,
	}
	wantTimes := []time.Time{
		utils.LocalToInstant(2025, time.January, 15, 23, 59, 58),
		utils.LocalToInstant(2025, time.January, 15, 23, 59, 59),
		utils.LocalToInstant(2025, time.January, 16, 0, 0, 0),
		utils.LocalToInstant(2025, time.January, 16, 0, 0, 1),
	}
	for i, e := range synthetic {
		assert.Equal(t, wantTypes[i], e.Type)
		assert.True(t, e.OccurredAt.Equal(wantTimes[i]), "event %d at %s", i, e.OccurredAt)
		assert.Equal(t, models.SourceRollover, e.Source)
	}

	// the break continues across the cut: neither day double counts the break
	priorDay := punchRepo.all(id)[:4]
	boundaryEnd := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.January, Day: 16})
	assert.InDelta(t, 4*60, WorkedMinutes(priorDay, &boundaryEnd), 1.0/30)
}

func TestRolloverIsIdempotent(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))

	boundary := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.January, Day: 16})
	affected, err := svc.RunRolloverForBoundary(context.Background(), boundary)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	firstCount := len(punchRepo.all(id))

	affected, err = svc.RunRolloverForBoundary(context.Background(), boundary)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
	assert.Len(t, punchRepo.all(id), firstCount)
}

func TestRolloverSkipsEmployeesAlreadyOut(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 9, 0, 0))
	seedPunch(t, punchRepo, id, models.PunchOut, utils.LocalToInstant(2025, time.January, 15, 17, 0, 0))

	boundary := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.January, Day: 16})
	affected, err := svc.RunRolloverForBoundary(context.Background(), boundary)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
	assert.Len(t, punchRepo.all(id), 2)
}

func TestRolloverSkipsInactiveEmployees(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, false)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))

	boundary := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.January, Day: 16})
	affected, err := svc.RunRolloverForBoundary(context.Background(), boundary)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
	assert.Len(t, punchRepo.all(id), 1)
}

func TestRolloverAbortsEmployeeWhenWindowQueryFails(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))
	punchRepo.failListRange = true

	boundary := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.January, Day: 16})
	affected, err := svc.RunRolloverForBoundary(context.Background(), boundary)
	assert.Error(t, err)
	assert.Equal(t, 0, affected)
	assert.Len(t, punchRepo.all(id), 1)
}

func TestBackfillCoversMissedBoundaries(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	// clocked in Jan 15 evening and never out; the service was down for days
	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))
	svc.now = func() time.Time { return utils.LocalToInstant(2025, time.January, 18, 10, 0, 0) }

	inserted, err := svc.EnsureBackfillForEmployee(context.Background(), id, 7)
	require.NoError(t, err)
	assert.Equal(t, 6, inserted)

	events := punchRepo.all(id)
	require.Len(t, events, 7)

	// one out/in pair per missed boundary, oldest first
	for i, day := range []int{15, 16, 17} {
		out := events[1+2*i]
		in := events[2+2*i]
		assert.Equal(t, models.PunchOut, out.Type)
		assert.True(t, out.OccurredAt.Equal(utils.LocalToInstant(2025, time.January, day, 23, 59, 59)))
		assert.Equal(t, models.PunchIn, in.Type)
		assert.True(t, in.OccurredAt.Equal(utils.LocalToInstant(2025, time.January, day+1, 0, 0, 0)))
		assert.Equal(t, models.SourceBackfill, out.Source)
		assert.Equal(t, models.SourceBackfill, in.Source)
	}
}

func TestBackfillIsIdempotent(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))
	svc.now = func() time.Time { return utils.LocalToInstant(2025, time.January, 16, 10, 0, 0) }

	inserted, err := svc.EnsureBackfillForEmployee(context.Background(), id, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	inserted, err = svc.EnsureBackfillForEmployee(context.Background(), id, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Len(t, punchRepo.all(id), 3)
}

func TestConcurrentBackfillInsertsEachEventOnce(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))
	svc.now = func() time.Time { return utils.LocalToInstant(2025, time.January, 16, 10, 0, 0) }

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.EnsureBackfillForEmployee(context.Background(), id, 7)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	events := punchRepo.all(id)
	require.Len(t, events, 3)
	seen := make(map[string]int)
	for _, e := range events {
		seen[string(e.Type)+"@"+e.OccurredAt.UTC().Format(time.RFC3339)]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "duplicate synthetic event %s", key)
	}
}

func TestDailySweepContinuesPastEmployeeFailures(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))
	punchRepo.failListRange = true

	// per-employee failures are logged, not propagated
	assert.NoError(t, svc.RunDailySweep(context.Background()))
}

func TestDailySweepBackfillsMostRecentBoundary(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.January, 15, 22, 0, 0))
	svc.now = func() time.Time { return utils.LocalToInstant(2025, time.January, 16, 0, 10, 0) }

	require.NoError(t, svc.RunDailySweep(context.Background()))

	events := punchRepo.all(id)
	require.Len(t, events, 3)
	assert.Equal(t, models.PunchOut, events[1].Type)
	assert.Equal(t, models.PunchIn, events[2].Type)
}

func TestRolloverAcrossFallBack(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	// Nov 1 2025 is the last EDT day; Nov 2 starts EST after the 02:00 shift
	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.November, 1, 22, 0, 0))

	boundary := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.November, Day: 2})
	affected, err := svc.RunRolloverForBoundary(context.Background(), boundary)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	events := punchRepo.all(id)
	require.Len(t, events, 3)
	assert.Equal(t, models.PunchOut, events[1].Type)
	assert.True(t, events[1].OccurredAt.Equal(time.Date(2025, time.November, 2, 3, 59, 59, 0, time.UTC)))
	assert.Equal(t, models.PunchIn, events[2].Type)
	assert.True(t, events[2].OccurredAt.Equal(time.Date(2025, time.November, 2, 4, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Second, events[2].OccurredAt.Sub(events[1].OccurredAt))
}

func TestRolloverAcrossSpringForward(t *testing.T) {
	empRepo := newMemEmployeeRepo()
	punchRepo := newMemPunchRepo()
	svc := NewRolloverService(empRepo, punchRepo)
	id := newTestEmployee(t, empRepo, true)

	// Mar 8 2025 is the last EST day; Mar 9 starts EDT
	seedPunch(t, punchRepo, id, models.PunchIn, utils.LocalToInstant(2025, time.March, 8, 22, 0, 0))

	boundary := utils.MidnightInstant(utils.CivilDate{Year: 2025, Month: time.March, Day: 9})
	affected, err := svc.RunRolloverForBoundary(context.Background(), boundary)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	events := punchRepo.all(id)
	require.Len(t, events, 3)
	// 23:59:59 EST and 00:00:00 EST are one second apart in UTC
	assert.Equal(t, time.Second, events[2].OccurredAt.Sub(events[1].OccurredAt))
	assert.True(t, events[2].OccurredAt.Equal(time.Date(2025, time.March, 9, 5, 0, 0, 0, time.UTC)))
}
