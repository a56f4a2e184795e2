package controllers

import (
	"context"
	"net/http"

	"github.com/poofware/timeclock-service/internal/app"
	"github.com/poofware/timeclock-service/internal/dtos"
	"github.com/poofware/timeclock-service/internal/utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.app.DB.Ping(context.Background()); err != nil {
		utils.Logger.WithError(err).Error("timeclock-service DB unreachable")
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Database unreachable", nil, err)
		return
	}
	resp := dtos.HealthResponse{Status: "OK"}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
