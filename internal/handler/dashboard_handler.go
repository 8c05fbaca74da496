package handler

import (
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardService.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, summary)
}
