// Package handler provides HTTP handlers for audit log endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/activity/service"
	"github.com/festy23/stagegate/internal/response"
)

// Handler handles HTTP requests for audit log endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new activity handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// ListProjectActivity handles GET /api/projects/:id/activity request.
// @Summary List a project's audit log
// @Tags Activity
// @Produce json
// @Param id path string true "Project ID"
// @Param limit query int false "Maximum entries (default 100, max 500)"
// @Success 200 {object} map[string]interface{} "success envelope with activity"
// @Failure 400 {object} response.ErrorResponse
// @Router /api/projects/{id}/activity [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListProjectActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	logs, err := h.service.ListProjectActivity(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "activity", logs)
}
