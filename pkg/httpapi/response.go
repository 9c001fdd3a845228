package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
)

// ErrorBody is the error object of a failed response.
type ErrorBody struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Guidance string `json:"guidance"`
}

// Success writes a 200 response wrapping data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	Error(c, apperr.Validation("%s", message))
}

// Error writes err with the status matching its kind.
func Error(c *gin.Context, err error) {
	body := ErrorBody{
		Kind:     apperr.KindOf(err).String(),
		Message:  err.Error(),
		Guidance: apperr.GuidanceOf(err),
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Service == "" {
		body.Message = appErr.Message
	}

	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), gin.H{"success": false, "error": body})
}
