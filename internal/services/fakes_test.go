package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/repositories"
)

// memPunchRepo is an in-memory PunchEventRepository with the same semantics
// the SQL implementation gets from its uniqueness constraint.
type memPunchRepo struct {
	mu     sync.Mutex
	events []*models.PunchEvent

	nowFn         func() time.Time
	failListRange bool
}

func newMemPunchRepo() *memPunchRepo {
	return &memPunchRepo{nowFn: time.Now}
}

var _ repositories.PunchEventRepository = (*memPunchRepo)(nil)

func (r *memPunchRepo) Insert(_ context.Context, e *models.PunchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.nowFn().UTC()
	}
	e.CreatedAt = r.nowFn().UTC()
	stored := *e
	r.events = append(r.events, &stored)
	return nil
}

func (r *memPunchRepo) InsertIfAbsent(_ context.Context, e *models.PunchEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.events {
		if existing.EmployeeID == e.EmployeeID &&
			existing.Type == e.Type &&
			existing.OccurredAt.Equal(e.OccurredAt) {
			return false, nil
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = r.nowFn().UTC()
	stored := *e
	r.events = append(r.events, &stored)
	return true, nil
}

func (r *memPunchRepo) ListRange(_ context.Context, employeeID uuid.UUID, start, end time.Time) ([]*models.PunchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failListRange {
		return nil, errors.New("window query failed")
	}
	var out []*models.PunchEvent
	for _, e := range r.events {
		if e.EmployeeID == employeeID && !e.OccurredAt.Before(start) && e.OccurredAt.Before(end) {
			out = append(out, e)
		}
	}
	sortByOccurredAt(out)
	return out, nil
}

func (r *memPunchRepo) ListUpTo(_ context.Context, employeeID uuid.UUID, until time.Time) ([]*models.PunchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PunchEvent
	for _, e := range r.events {
		if e.EmployeeID == employeeID && !e.OccurredAt.After(until) {
			out = append(out, e)
		}
	}
	sortByOccurredAt(out)
	return out, nil
}

func (r *memPunchRepo) GetMostRecent(_ context.Context, employeeID uuid.UUID) (*models.PunchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.PunchEvent
	for _, e := range r.events {
		if e.EmployeeID != employeeID {
			continue
		}
		if latest == nil || e.OccurredAt.After(latest.OccurredAt) {
			latest = e
		}
	}
	return latest, nil
}

func (r *memPunchRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memPunchRepo) all(employeeID uuid.UUID) []*models.PunchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PunchEvent
	for _, e := range r.events {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	sortByOccurredAt(out)
	return out
}

func sortByOccurredAt(events []*models.PunchEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
}

// memEmployeeRepo is an in-memory EmployeeRepository with working optimistic
// locking.
type memEmployeeRepo struct {
	mu        sync.Mutex
	employees map[uuid.UUID]*models.Employee
	order     []uuid.UUID
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{employees: make(map[uuid.UUID]*models.Employee)}
}

var _ repositories.EmployeeRepository = (*memEmployeeRepo)(nil)

func (r *memEmployeeRepo) Create(_ context.Context, e *models.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.RowVersion = 1
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	stored := *e
	r.employees[e.ID] = &stored
	r.order = append(r.order, e.ID)
	return nil
}

func (r *memEmployeeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memEmployeeRepo) ListAll(_ context.Context) ([]*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Employee, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.employees[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memEmployeeRepo) ListActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, id := range r.order {
		if r.employees[id].Active {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memEmployeeRepo) UpdateIfVersion(_ context.Context, e *models.Employee, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.employees[e.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	stored := *e
	stored.RowVersion = expected + 1
	stored.UpdatedAt = time.Now().UTC()
	r.employees[e.ID] = &stored
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *memEmployeeRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Employee) error) error {
	getByID := func(ctx context.Context, idStr string) (*models.Employee, error) {
		parsed, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		return r.GetByID(ctx, parsed)
	}
	return repositories.WithRetry(ctx, 3, id.String(), getByID, r.UpdateIfVersion, mutate)
}
