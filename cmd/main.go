package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/poofware/timeclock-service/internal/app"
	"github.com/poofware/timeclock-service/internal/config"
	"github.com/poofware/timeclock-service/internal/constants"
	"github.com/poofware/timeclock-service/internal/controllers"
	"github.com/poofware/timeclock-service/internal/middleware"
	"github.com/poofware/timeclock-service/internal/repositories"
	"github.com/poofware/timeclock-service/internal/routes"
	"github.com/poofware/timeclock-service/internal/services"
	"github.com/poofware/timeclock-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize timeclock-service:", err)
	}
	defer application.Close()

	empRepo := repositories.NewEmployeeRepository(application.DB)
	punchRepo := repositories.NewPunchEventRepository(application.DB)

	if cfg.SeedTestData {
		if seedErr := app.SeedTestData(context.Background(), empRepo, punchRepo); seedErr != nil {
			utils.Logger.WithError(seedErr).Fatal("Failed to seed test data")
		}
	}

	rolloverSvc := services.NewRolloverService(empRepo, punchRepo)
	timeclockSvc := services.NewTimeclockService(empRepo, punchRepo, rolloverSvc)
	timesheetSvc := services.NewTimesheetService(empRepo, punchRepo, rolloverSvc)
	exportSvc := services.NewExportService(timesheetSvc)
	adminSvc := services.NewEmployeeAdminService(empRepo, punchRepo)

	healthController := controllers.NewHealthController(application)
	timeclockController := controllers.NewTimeclockController(timeclockSvc, timesheetSvc)
	adminController := controllers.NewAdminController(adminSvc, timesheetSvc, exportSvc, rolloverSvc)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.PunchIn, timeclockController.PunchInHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PunchOut, timeclockController.PunchOutHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PunchBreakStart, timeclockController.BreakStartHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PunchBreakEnd, timeclockController.BreakEndHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.TimeclockStatus, timeclockController.StatusHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Timesheet, timeclockController.TimesheetHandler).Methods(http.MethodGet)

	admin := router.NewRoute().Subrouter()
	admin.Use(
		middleware.AuthMiddleware(cfg.RSAPublicKey),
		middleware.AdminAuthMiddleware(),
	)

	admin.HandleFunc(routes.AdminEmployees, adminController.CreateEmployeeHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminEmployees, adminController.ListEmployeesHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminEmployeeByID, adminController.UpdateEmployeeHandler).Methods(http.MethodPatch, http.MethodPut)
	admin.HandleFunc(routes.AdminTimesheet, adminController.TimesheetHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminTimesheetExport, adminController.ExportTimesheetHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminBackfill, adminController.BackfillHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminPunchByID, adminController.DeletePunchHandler).Methods(http.MethodDelete)

	// The rollover scheduler arms a one-shot timer for the next business-local
	// midnight and re-arms itself after every run.
	scheduler := services.NewRolloverScheduler(rolloverSvc)
	scheduler.Start(context.Background())

	// Compensating sweep shortly after midnight: catches employees the
	// scheduled pass failed on (e.g. a transient DB outage at the boundary).
	c := cron.New()
	_, sweepErr := c.AddFunc(constants.DailySweepCronSpec, func() {
		if e := rolloverSvc.RunDailySweep(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Daily rollover sweep failed")
		}
	})
	if sweepErr != nil {
		utils.Logger.WithError(sweepErr).Fatal("Failed to schedule daily rollover sweep cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if cfg.CORSAllowLocalhost {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("timeclock-service failed to start:", err)
	}
}
