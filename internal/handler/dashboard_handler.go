package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/utils"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns the dashboard overview, optionally bounded by dateFrom/dateTo
func (h *DashboardHandler) Stats(c *gin.Context) {
	from, ok := optionalDateQuery(c, "dateFrom")
	if !ok {
		return
	}
	to, ok := optionalDateQuery(c, "dateTo")
	if !ok {
		return
	}
	stats, err := h.dashboardService.Stats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// MonthlyReport returns totals for ?year=&month=
func (h *DashboardHandler) MonthlyReport(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "year is required")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "month is required")
		return
	}
	report, err := h.dashboardService.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, report)
}
