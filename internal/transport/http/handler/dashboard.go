package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"claira-social/internal/app"
	"claira-social/internal/transport/http/response"
)

type DashboardHandler struct {
	dashboardService *app.DashboardService
	log              zerolog.Logger
}

func NewDashboardHandler(dashboardService *app.DashboardService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, log: log}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err, "load dashboard failed")
		return
	}

	response.OK(c, dashboard)
}
