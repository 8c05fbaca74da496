package handler

import (
	"hospital-equipment-tracker/internal/middleware"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	setting, err := h.settingsService.Get()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, setting)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var in service.SettingsInput
	if !bindJSON(c, &in) {
		return
	}
	setting, err := h.settingsService.Update(in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, setting)
}
