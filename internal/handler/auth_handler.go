package handler

import (
	"net/http"
	"time"

	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	authService   *service.AuthService
	refreshMaxAge time.Duration
	secureCookie  bool
}

func NewAuthHandler(authService *service.AuthService, refreshMaxAge time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		refreshMaxAge: refreshMaxAge,
		secureCookie:  secureCookie,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, response.RefreshToken)
	utils.SuccessResponse(c, gin.H{
		"access_token": response.AccessToken,
		"user":         response.User,
	})
}

// Refresh generates a new access token from the refresh token cookie
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookie)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(refreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"access_token": accessToken,
	})
}

// Logout revokes the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie(refreshCookie); err == nil {
		if err := h.authService.Logout(refreshToken); err != nil {
			respondError(c, err)
			return
		}
	}

	c.SetCookie(refreshCookie, "", -1, "/", "", h.secureCookie, true)
	utils.MessageResponse(c, "Logged out successfully")
}

// Register creates the first account, which becomes the administrator
func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	response, err := h.authService.Register(in)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, response.RefreshToken)
	utils.CreatedResponse(c, gin.H{
		"access_token": response.AccessToken,
		"user":         response.User,
	})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(refreshCookie, token, int(h.refreshMaxAge.Seconds()), "/", "", h.secureCookie, true)
}
