package handler

import (
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List supports ?action=&page=&per_page=
func (h *AuditHandler) List(c *gin.Context) {
	page, err := h.auditService.List(c.Query("action"), listQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, page)
}
