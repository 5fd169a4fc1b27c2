// Package handler provides HTTP handlers for project endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/project/model"
	"github.com/festy23/stagegate/internal/project/service"
	"github.com/festy23/stagegate/internal/response"
)

// Handler handles HTTP requests for project endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new project handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// CreateProject handles POST /api/projects request.
// @Summary Create a project at STAGE_0
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body model.CreateProjectRequest true "Request"
// @Success 201 {object} map[string]interface{} "success envelope with project"
// @Failure 400 {object} response.ErrorResponse
// @Router /api/projects [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) CreateProject(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), principal, &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusCreated, "project", project)
}

// ListProjects handles GET /api/projects request.
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param stage query string false "Stage filter"
// @Param status query string false "Status filter"
// @Param cluster query string false "Cluster filter"
// @Success 200 {object} map[string]interface{} "success envelope with projects"
// @Failure 400 {object} response.ErrorResponse
// @Router /api/projects [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListProjects(c *gin.Context) {
	var filter model.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	projects, err := h.service.ListProjects(c.Request.Context(), &filter)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "projects", projects)
}

// GetProject handles GET /api/projects/:id request.
// @Summary Get a project with its members
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{} "success envelope with project"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/projects/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.service.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "project", project)
}

// UpdateProject handles PATCH /api/projects/:id request.
// @Summary Edit project attributes
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body model.UpdateProjectRequest true "Request"
// @Success 200 {object} map[string]interface{} "success envelope with project"
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/projects/{id} [patch] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) UpdateProject(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	project, err := h.service.UpdateProject(c.Request.Context(), principal, c.Param("id"), &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "project", project)
}

// DeleteProject handles DELETE /api/projects/:id request.
// @Summary Delete a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{} "success envelope with deleted id"
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/projects/{id} [delete] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) DeleteProject(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	projectID := c.Param("id")
	if err := h.service.DeleteProject(c.Request.Context(), principal, projectID); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "deleted", projectID)
}

// AddMember handles POST /api/projects/:id/members request.
// @Summary Add a project member
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body model.AddMemberRequest true "Request"
// @Success 200 {object} map[string]interface{} "success envelope with project"
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/projects/{id}/members [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) AddMember(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	project, err := h.service.AddMember(c.Request.Context(), principal, c.Param("id"), &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "project", project)
}
