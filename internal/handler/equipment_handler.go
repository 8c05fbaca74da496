package handler

import (
	"hospital-equipment-tracker/internal/middleware"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type EquipmentHandler struct {
	ppmService *service.PPMService
	ocmService *service.OCMService
}

func NewEquipmentHandler(ppmService *service.PPMService, ocmService *service.OCMService) *EquipmentHandler {
	return &EquipmentHandler{
		ppmService: ppmService,
		ocmService: ocmService,
	}
}

type BulkDeleteRequest struct {
	Serials []string `json:"serials" binding:"required,min=1"`
}

// ListPPM supports ?q=&department=&status=&page=&per_page=&sort=&dir=
func (h *EquipmentHandler) ListPPM(c *gin.Context) {
	page, err := h.ppmService.List(listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, page)
}

func (h *EquipmentHandler) GetPPM(c *gin.Context) {
	view, err := h.ppmService.Get(c.Param("serial"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

func (h *EquipmentHandler) CreatePPM(c *gin.Context) {
	var in service.PPMInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.ppmService.Create(in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, view)
}

func (h *EquipmentHandler) UpdatePPM(c *gin.Context) {
	var in service.PPMInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.ppmService.Update(c.Param("serial"), in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

func (h *EquipmentHandler) DeletePPM(c *gin.Context) {
	if err := h.ppmService.Delete(c.Param("serial"), middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "Equipment deleted")
}

// PreviewPPM returns the quarter chain and statuses a form would produce
func (h *EquipmentHandler) PreviewPPM(c *gin.Context) {
	var in service.PPMInput
	if !bindJSON(c, &in) {
		return
	}
	utils.SuccessResponse(c, h.ppmService.Preview(in))
}

func (h *EquipmentHandler) RefreshPPM(c *gin.Context) {
	n, err := h.ppmService.RefreshStatuses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"updated": n})
}

func (h *EquipmentHandler) BulkDeletePPM(c *gin.Context) {
	var req BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.ppmService.BulkDelete(req.Serials, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": n})
}

func (h *EquipmentHandler) ListOCM(c *gin.Context) {
	page, err := h.ocmService.List(listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, page)
}

func (h *EquipmentHandler) GetOCM(c *gin.Context) {
	view, err := h.ocmService.Get(c.Param("serial"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

func (h *EquipmentHandler) CreateOCM(c *gin.Context) {
	var in service.OCMInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.ocmService.Create(in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, view)
}

func (h *EquipmentHandler) UpdateOCM(c *gin.Context) {
	var in service.OCMInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.ocmService.Update(c.Param("serial"), in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

func (h *EquipmentHandler) DeleteOCM(c *gin.Context) {
	if err := h.ocmService.Delete(c.Param("serial"), middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "Equipment deleted")
}

func (h *EquipmentHandler) RefreshOCM(c *gin.Context) {
	n, err := h.ocmService.RefreshStatuses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"updated": n})
}

func (h *EquipmentHandler) BulkDeleteOCM(c *gin.Context) {
	var req BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.ocmService.BulkDelete(req.Serials, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": n})
}
