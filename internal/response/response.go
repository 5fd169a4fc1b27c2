// Package response provides the JSON envelopes used by every HTTP handler.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/apperr"
)

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict, apperr.KindPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the failure envelope for err. Uncategorized errors are logged
// and reported as a generic 500 so internals never leak to the caller.
func Error(c *gin.Context, logger *zap.SugaredLogger, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError {
		logger.Errorw("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.AbortWithStatusJSON(status, ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"})
		return
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: string(kind)})
}

// BadRequest writes a validation failure for malformed request bodies.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: message,
		Code:  string(apperr.KindValidation),
	})
}

// Success writes {"success": true, key: value}.
func Success(c *gin.Context, status int, key string, value any) {
	c.JSON(status, gin.H{
		"success": true,
		key:       value,
	})
}
