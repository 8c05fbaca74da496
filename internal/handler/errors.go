package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"hospital-equipment-tracker/internal/repository"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 50
	maxPerPage     = 500
)

// respondError maps service errors to HTTP statuses. Unexpected errors are
// attached to the context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.FieldErrorResponse(c, "Validation failed", verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrDuplicateSerial), errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrLastAdmin), errors.Is(err, service.ErrSelfDelete):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSerialImmutable), errors.Is(err, service.ErrInvalidInput):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrRegistrationClosed):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	default:
		_ = c.Error(err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// listQuery reads ?q=&department=&page=&per_page=&sort=&dir=
func listQuery(c *gin.Context) repository.ListQuery {
	q := repository.ListQuery{
		Search:     strings.TrimSpace(c.Query("q")),
		Department: strings.TrimSpace(c.Query("department")),
		Page:       1,
		PerPage:    defaultPerPage,
		Sort:       c.Query("sort"),
		Dir:        c.Query("dir"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		q.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 {
		q.PerPage = min(perPage, maxPerPage)
	}
	return q
}

func listParams(c *gin.Context) service.ListParams {
	return service.ListParams{ListQuery: listQuery(c), Status: c.Query("status")}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
