package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/timeclock-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

// PunchEventRepository is the append-only punch log. Events are never updated;
// Delete exists only for explicit administrative correction.
type PunchEventRepository interface {
	// Insert appends an event. A zero OccurredAt means the store assigns
	// NOW(); the assigned instant is written back into the model.
	Insert(ctx context.Context, e *models.PunchEvent) error

	// InsertIfAbsent appends an event unless one with the same
	// (employee_id, type, occurred_at) already exists. Returns whether a row
	// was actually inserted. This is the uniqueness guard the rollover engine
	// relies on.
	InsertIfAbsent(ctx context.Context, e *models.PunchEvent) (bool, error)

	// ListRange returns the employee's events with start <= occurred_at < end,
	// ordered ascending.
	ListRange(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*models.PunchEvent, error)

	// ListUpTo returns all of the employee's events with occurred_at <= until,
	// ordered ascending.
	ListUpTo(ctx context.Context, employeeID uuid.UUID, until time.Time) ([]*models.PunchEvent, error)

	// GetMostRecent returns the employee's latest event, or nil if none exist.
	GetMostRecent(ctx context.Context, employeeID uuid.UUID) (*models.PunchEvent, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type punchEventRepo struct {
	db DB
}

func NewPunchEventRepository(db DB) PunchEventRepository {
	return &punchEventRepo{db: db}
}

func baseSelectPunch() string {
	return `
        SELECT id, employee_id, type, occurred_at, source, created_at
        FROM punch_events
    `
}

func scanPunch(row pgx.Row) (*models.PunchEvent, error) {
	var e models.PunchEvent
	err := row.Scan(
		&e.ID,
		&e.EmployeeID,
		&e.Type,
		&e.OccurredAt,
		&e.Source,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *punchEventRepo) Insert(ctx context.Context, e *models.PunchEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	var occurredAt *time.Time
	if !e.OccurredAt.IsZero() {
		t := e.OccurredAt.UTC()
		occurredAt = &t
	}
	row := r.db.QueryRow(ctx, `
        INSERT INTO punch_events (id, employee_id, type, occurred_at, source, created_at)
        VALUES ($1, $2, $3, COALESCE($4, NOW()), $5, NOW())
        RETURNING occurred_at, created_at
    `,
		e.ID,
		e.EmployeeID,
		e.Type,
		occurredAt,
		e.Source,
	)
	return row.Scan(&e.OccurredAt, &e.CreatedAt)
}

func (r *punchEventRepo) InsertIfAbsent(ctx context.Context, e *models.PunchEvent) (bool, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	tag, err := r.db.Exec(ctx, `
        INSERT INTO punch_events (id, employee_id, type, occurred_at, source, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (employee_id, type, occurred_at) DO NOTHING
    `,
		e.ID,
		e.EmployeeID,
		e.Type,
		e.OccurredAt.UTC(),
		e.Source,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *punchEventRepo) ListRange(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*models.PunchEvent, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPunch()+`
        WHERE employee_id = $1 AND occurred_at >= $2 AND occurred_at < $3
        ORDER BY occurred_at ASC
    `, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	return collectPunches(rows)
}

func (r *punchEventRepo) ListUpTo(ctx context.Context, employeeID uuid.UUID, until time.Time) ([]*models.PunchEvent, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPunch()+`
        WHERE employee_id = $1 AND occurred_at <= $2
        ORDER BY occurred_at ASC
    `, employeeID, until)
	if err != nil {
		return nil, err
	}
	return collectPunches(rows)
}

func (r *punchEventRepo) GetMostRecent(ctx context.Context, employeeID uuid.UUID) (*models.PunchEvent, error) {
	row := r.db.QueryRow(ctx,
		baseSelectPunch()+`
        WHERE employee_id = $1
        ORDER BY occurred_at DESC
        LIMIT 1
    `, employeeID)
	e, err := scanPunch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *punchEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM punch_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collectPunches(rows pgx.Rows) ([]*models.PunchEvent, error) {
	defer rows.Close()

	var out []*models.PunchEvent
	for rows.Next() {
		e, err := scanPunch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
