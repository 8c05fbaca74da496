package handler

import (
	"hospital-equipment-tracker/internal/middleware"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BackupHandler struct {
	backupService *service.BackupService
}

func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

type CreateBackupRequest struct {
	Type string `json:"type"`
}

func (h *BackupHandler) List(c *gin.Context) {
	backups, err := h.backupService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, backups)
}

// Create takes an optional {"type": "full"|"settings"} body
func (h *BackupHandler) Create(c *gin.Context) {
	var req CreateBackupRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	info, err := h.backupService.Create(c.Request.Context(), req.Type, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, info)
}

func (h *BackupHandler) Delete(c *gin.Context) {
	if err := h.backupService.Delete(c.Request.Context(), c.Param("name"), middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "Backup deleted")
}
