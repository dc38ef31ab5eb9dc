package handlers

import (
	"errors"
	"net/http"

	"reimdesk/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Response is the uniform envelope of every endpoint; callers branch on
// Success.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), Response{Success: false, Error: err.Error()})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, services.ErrMissingSourceFile):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTemplateInUse):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnsupportedFileType),
		errors.Is(err, services.ErrSingleFileItem),
		errors.Is(err, services.ErrUnsupportedVersion),
		errors.Is(err, services.ErrMissingManifest),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNothingToPrint):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPDFNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
