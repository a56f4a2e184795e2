package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/timeclock-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type EmployeeRepository interface {
	Create(ctx context.Context, e *models.Employee) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	ListAll(ctx context.Context) ([]*models.Employee, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)

	UpdateIfVersion(ctx context.Context, e *models.Employee, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Employee) error) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type employeeRepo struct {
	db DB
}

func NewEmployeeRepository(db DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func baseSelectEmployee() string {
	return `
        SELECT id, first_name, last_name, active,
               row_version, created_at, updated_at
        FROM employees
    `
}

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var e models.Employee
	err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.Active,
		&e.RowVersion,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) Create(ctx context.Context, e *models.Employee) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO employees (
            id, first_name, last_name, active,
            row_version, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,1,NOW(),NOW())
    `,
		e.ID,
		e.FirstName,
		e.LastName,
		e.Active,
	)
	return err
}

func (r *employeeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	row := r.db.QueryRow(ctx, baseSelectEmployee()+` WHERE id = $1`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *employeeRepo) ListAll(ctx context.Context) ([]*models.Employee, error) {
	rows, err := r.db.Query(ctx, baseSelectEmployee()+` ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Employee
	for rows.Next() {
		e, scanErr := scanEmployee(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *employeeRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM employees WHERE active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *employeeRepo) UpdateIfVersion(ctx context.Context, e *models.Employee, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE employees
        SET first_name = $2,
            last_name  = $3,
            active     = $4,
            row_version = row_version + 1,
            updated_at  = NOW()
        WHERE id = $1 AND row_version = $5
    `,
		e.ID,
		e.FirstName,
		e.LastName,
		e.Active,
		expected,
	)
}

func (r *employeeRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Employee) error) error {
	getByID := func(ctx context.Context, idStr string) (*models.Employee, error) {
		parsed, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		return r.GetByID(ctx, parsed)
	}
	return WithRetry(ctx, 3, id.String(), getByID, r.UpdateIfVersion, mutate)
}
