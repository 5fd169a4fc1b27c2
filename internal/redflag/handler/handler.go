// Package handler provides HTTP handlers for red flag endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/redflag/model"
	"github.com/festy23/stagegate/internal/redflag/service"
	"github.com/festy23/stagegate/internal/response"
)

// Handler handles HTTP requests for red flag endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new red flag handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Raise handles POST /api/projects/:id/red-flags request.
// @Summary Raise a red flag on a project
// @Tags RedFlags
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body model.RaiseRequest true "Request"
// @Success 201 {object} map[string]interface{} "success envelope with red_flag"
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/projects/{id}/red-flags [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Raise(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.RaiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	flag, err := h.service.Raise(c.Request.Context(), principal, c.Param("id"), &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusCreated, "red_flag", flag)
}

// List handles GET /api/projects/:id/red-flags request.
// @Summary List a project's red flags
// @Tags RedFlags
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{} "success envelope with red_flags"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/projects/{id}/red-flags [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) List(c *gin.Context) {
	flags, err := h.service.ListForProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "red_flags", flags)
}

// Resolve handles PUT /api/red-flags/:id/resolve request.
// @Summary Resolve a red flag
// @Tags RedFlags
// @Produce json
// @Param id path string true "Red flag ID"
// @Success 200 {object} map[string]interface{} "success envelope with red_flag"
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/red-flags/{id}/resolve [put] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Resolve(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	flag, err := h.service.Resolve(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "red_flag", flag)
}
