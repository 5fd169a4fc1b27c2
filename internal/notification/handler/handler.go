// Package handler provides HTTP handlers for notification endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/notification/service"
	"github.com/festy23/stagegate/internal/response"
)

// Handler handles HTTP requests for notification endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new notification handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// ListForUser handles GET /api/notifications request.
// @Summary List the caller's notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} map[string]interface{} "success envelope with notifications"
// @Failure 401 {object} response.ErrorResponse
// @Router /api/notifications [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListForUser(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	unreadOnly := false
	if raw := c.Query("unread"); raw != "" {
		unreadOnly, err = strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "unread must be a boolean")
			return
		}
	}

	notifications, err := h.service.ListForUser(c.Request.Context(), principal, unreadOnly)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "notifications", notifications)
}

// MarkRead handles PUT /api/notifications/:id/read request.
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{} "success envelope with notification"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/notifications/{id}/read [put] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) MarkRead(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	notification, err := h.service.MarkRead(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "notification", notification)
}
