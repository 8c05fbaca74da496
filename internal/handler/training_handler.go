package handler

import (
	"hospital-equipment-tracker/internal/middleware"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TrainingHandler struct {
	trainingService *service.TrainingService
}

func NewTrainingHandler(trainingService *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

func (h *TrainingHandler) List(c *gin.Context) {
	page, err := h.trainingService.List(listQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, page)
}

func (h *TrainingHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	view, err := h.trainingService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

func (h *TrainingHandler) Create(c *gin.Context) {
	var in service.TrainingInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.trainingService.Create(in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, view)
}

func (h *TrainingHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.TrainingInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.trainingService.Update(id, in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

func (h *TrainingHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.trainingService.Delete(id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "Training record deleted")
}
