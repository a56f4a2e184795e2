package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/poofware/timeclock-service/internal/models"
	"github.com/poofware/timeclock-service/internal/repositories"
	"github.com/poofware/timeclock-service/internal/utils"
)

// SeedTestData inserts a small fixed roster for local development. It is a
// no-op when employees already exist.
func SeedTestData(
	ctx context.Context,
	empRepo repositories.EmployeeRepository,
	punchRepo repositories.PunchEventRepository,
) error {
	existing, err := empRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		utils.Logger.Info("Employees already present; skipping test data seed")
		return nil
	}

	roster := []*models.Employee{
		{ID: uuid.New(), FirstName: "Dana", LastName: "Whitfield", Active: true},
		{ID: uuid.New(), FirstName: "Marcus", LastName: "Okafor", Active: true},
		{ID: uuid.New(), FirstName: "Priya", LastName: "Raman", Active: true},
		{ID: uuid.New(), FirstName: "Glen", LastName: "Soto", Active: false},
	}
	for _, e := range roster {
		if err := empRepo.Create(ctx, e); err != nil {
			return err
		}
	}

	// one employee starts the day clocked in
	punch := &models.PunchEvent{
		EmployeeID: roster[0].ID,
		Type:       models.PunchIn,
		Source:     models.SourceEmployee,
	}
	if err := punchRepo.Insert(ctx, punch); err != nil {
		return err
	}

	utils.Logger.Infof("Seeded %d employees", len(roster))
	return nil
}
