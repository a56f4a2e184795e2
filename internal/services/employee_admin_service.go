package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/timeclock-service/internal/dtos"
	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/repositories"
	"github.com/poofware/timeclock-service/internal/utils"
)

// EmployeeAdminService covers the admin surface: employee records and
// administrative punch deletion.
type EmployeeAdminService struct {
	empRepo   repositories.EmployeeRepository
	punchRepo repositories.PunchEventRepository
}

func NewEmployeeAdminService(
	empRepo repositories.EmployeeRepository,
	punchRepo repositories.PunchEventRepository,
) *EmployeeAdminService {
	return &EmployeeAdminService{empRepo: empRepo, punchRepo: punchRepo}
}

func (s *EmployeeAdminService) CreateEmployee(ctx context.Context, req dtos.CreateEmployeeRequest) (*dtos.EmployeeDTO, error) {
	emp := &models.Employee{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Active:    true,
	}
	if err := s.empRepo.Create(ctx, emp); err != nil {
		return nil, err
	}
	// re-read for store-assigned timestamps
	created, err := s.empRepo.GetByID(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	dto := toEmployeeDTO(created)
	return &dto, nil
}

func (s *EmployeeAdminService) ListEmployees(ctx context.Context) ([]dtos.EmployeeDTO, error) {
	emps, err := s.empRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.EmployeeDTO, 0, len(emps))
	for _, e := range emps {
		out = append(out, toEmployeeDTO(e))
	}
	return out, nil
}

// UpdateEmployee applies a partial update under optimistic locking. Toggling
// Active on/off is how employees enter and leave the rollover population.
func (s *EmployeeAdminService) UpdateEmployee(ctx context.Context, id uuid.UUID, req dtos.UpdateEmployeeRequest) (*dtos.EmployeeDTO, error) {
	err := s.empRepo.UpdateWithRetry(ctx, id, func(e *models.Employee) error {
		if req.FirstName != nil {
			e.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			e.LastName = *req.LastName
		}
		if req.Active != nil {
			e.Active = *req.Active
		}
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &utils.AppError{
			StatusCode: http.StatusNotFound,
			Code:       utils.ErrCodeNotFound,
			Message:    "Employee not found",
			Err:        utils.ErrEmployeeNotFound,
		}
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.empRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toEmployeeDTO(updated)
	return &dto, nil
}

// DeletePunch removes a punch row outright. Only admins reach this; ordinary
// flows treat the log as append-only.
func (s *EmployeeAdminService) DeletePunch(ctx context.Context, punchID uuid.UUID) error {
	err := s.punchRepo.Delete(ctx, punchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &utils.AppError{
			StatusCode: http.StatusNotFound,
			Code:       utils.ErrCodeNotFound,
			Message:    "Punch not found",
			Err:        utils.ErrPunchNotFound,
		}
	}
	return err
}

func toEmployeeDTO(e *models.Employee) dtos.EmployeeDTO {
	return dtos.EmployeeDTO{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
	}
}
