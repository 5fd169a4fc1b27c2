// Package handler provides HTTP handlers for user endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/response"
	"github.com/festy23/stagegate/internal/user/model"
	"github.com/festy23/stagegate/internal/user/service"
)

// Handler handles HTTP requests for user endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new user handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// UpsertUser handles POST /api/users request.
// @Summary Create or replace a directory user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body model.UpsertUserRequest true "Request"
// @Success 200 {object} map[string]interface{} "success envelope with user"
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/users [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) UpsertUser(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.service.UpsertUser(c.Request.Context(), principal, &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "user", user)
}

// GetUser handles GET /api/users/:id request.
// @Summary Get a directory user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{} "success envelope with user"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/users/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "user", user)
}

// SetIsActive handles POST /api/users/setIsActive request.
// @Summary Set user activity status
// @Tags Users
// @Accept json
// @Produce json
// @Param request body model.SetIsActiveRequest true "Request"
// @Success 200 {object} map[string]interface{} "success envelope with user"
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/users/setIsActive [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) SetIsActive(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.SetIsActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.service.SetIsActive(c.Request.Context(), principal, &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "user", user)
}
