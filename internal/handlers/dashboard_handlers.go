package handlers

import (
	"net/http"

	"invoicedash/internal/common"
	"invoicedash/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type DashboardHandlers struct {
	dashboardService services.DashboardService
	log              zerolog.Logger
}

func NewDashboardHandlers(dashboardService services.DashboardService, log zerolog.Logger) *DashboardHandlers {
	return &DashboardHandlers{dashboardService: dashboardService, log: log}
}

// Summary handles GET /dashboard
func (h *DashboardHandlers) Summary(c echo.Context) error {
	summary, err := h.dashboardService.Summary(c.Request().Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load dashboard summary")
		return common.SendServerError(c, "Failed to load dashboard")
	}
	return c.JSON(http.StatusOK, summary)
}
