package handler

import (
	"strconv"

	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	reminderService *service.ReminderService
}

func NewReminderHandler(reminderService *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (h *ReminderHandler) Upcoming(c *gin.Context) {
	items, err := h.reminderService.Upcoming()
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []service.UpcomingItem{}
	}
	utils.SuccessResponse(c, gin.H{"items": items, "count": len(items)})
}

// Run sends a digest now. ?force=false honours the email toggle in settings.
func (h *ReminderHandler) Run(c *gin.Context) {
	force := true
	if v, err := strconv.ParseBool(c.Query("force")); err == nil {
		force = v
	}

	result, err := h.reminderService.RunOnce(c.Request.Context(), force)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}
