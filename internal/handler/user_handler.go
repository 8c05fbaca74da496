package handler

import (
	"hospital-equipment-tracker/internal/middleware"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var in service.UserInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.userService.Create(in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, view)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.UserUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.userService.Update(id, in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "User deleted")
}
