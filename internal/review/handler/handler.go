// Package handler provides HTTP handlers for gate review endpoints.
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/response"
	"github.com/festy23/stagegate/internal/review/model"
	"github.com/festy23/stagegate/internal/review/service"
)

// Handler handles HTTP requests for gate review endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new review handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// AssignReviewers handles POST /api/review-sessions request.
// @Summary Open a review session and assign reviewers
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body model.AssignReviewersRequest true "Request"
// @Success 201 {object} map[string]interface{} "success envelope with session"
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/review-sessions [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) AssignReviewers(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.AssignReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	session, err := h.service.AssignReviewers(c.Request.Context(), principal, &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusCreated, "session", session)
}

// GetSession handles GET /api/review-sessions/:id request.
// @Summary Get a review session with its summary
// @Tags Reviews
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{} "success envelope with session"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/review-sessions/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "session", session)
}

// UpdateSession handles PUT /api/review-sessions/:id request.
// @Summary Approve or close a review session
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body model.SessionActionRequest true "Request"
// @Success 200 {object} map[string]interface{} "success envelope with result or session"
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/review-sessions/{id} [put] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) UpdateSession(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case model.ActionApprove:
		result, err := h.service.ApproveSession(c.Request.Context(), principal, c.Param("id"), req.Decision)
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.Success(c, http.StatusOK, "result", result)
	case model.ActionClose:
		session, err := h.service.CloseSession(c.Request.Context(), principal, c.Param("id"), req.Reason)
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.Success(c, http.StatusOK, "session", session)
	default:
		response.Error(c, h.logger, model.ErrInvalidAction)
	}
}

// AddReviewer handles POST /api/review-sessions/:id/reviewers request.
// @Summary Add a reviewer to an open session
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body model.AddReviewerRequest true "Request"
// @Success 200 {object} map[string]interface{} "success envelope with session"
// @Failure 409 {object} response.ErrorResponse
// @Router /api/review-sessions/{id}/reviewers [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) AddReviewer(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.AddReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	session, err := h.service.AddReviewer(c.Request.Context(), principal, c.Param("id"), &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "session", session)
}

// StartAssignment handles POST /api/review-sessions/:id/start request.
// @Summary Mark the caller's assignment as in progress
// @Tags Reviews
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{} "success envelope with assignment"
// @Failure 403 {object} response.ErrorResponse
// @Router /api/review-sessions/{id}/start [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) StartAssignment(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	assignment, err := h.service.StartAssignment(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "assignment", assignment)
}

// GetAssignment handles GET /api/review-sessions/:id/assignments/:reviewerId request.
// @Summary Get a reviewer's assignment in a session
// @Tags Reviews
// @Produce json
// @Param id path string true "Session ID"
// @Param reviewerId path string true "Reviewer ID"
// @Success 200 {object} map[string]interface{} "success envelope with assignment"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/review-sessions/{id}/assignments/{reviewerId} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetAssignment(c *gin.Context) {
	assignment, err := h.service.GetAssignment(c.Request.Context(), c.Param("id"), c.Param("reviewerId"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "assignment", assignment)
}

// SubmitReview handles POST /api/reviews request.
// @Summary Submit the caller's gate review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body model.SubmitReviewRequest true "Request"
// @Success 201 {object} map[string]interface{} "success envelope with review"
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/reviews [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) SubmitReview(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	review, err := h.service.SubmitReview(c.Request.Context(), principal, &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusCreated, "review", review)
}

// UpdateReview handles PUT /api/reviews/:id request.
// @Summary Revise a submitted gate review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param request body model.UpdateReviewRequest true "Request"
// @Success 200 {object} map[string]interface{} "success envelope with review"
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/reviews/{id} [put] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) UpdateReview(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	review, err := h.service.UpdateReview(c.Request.Context(), principal, c.Param("id"), &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "review", review)
}

// RecordProjectReview handles POST /api/projects/:id/reviews request.
// @Summary Submit a review to the open session of a project stage
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body model.ProjectReviewRequest true "Request"
// @Success 200 {object} map[string]interface{} "success envelope with review"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/projects/{id}/reviews [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) RecordProjectReview(c *gin.Context) {
	principal, err := identity.Require(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req model.ProjectReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	review, err := h.service.RecordProjectReview(c.Request.Context(), principal, c.Param("id"), &req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "review", review)
}

// ListProjectReviews handles GET /api/projects/:id/reviews request.
// @Summary List a project's gate reviews
// @Tags Reviews
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{} "success envelope with reviews"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/projects/{id}/reviews [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListProjectReviews(c *gin.Context) {
	reviews, err := h.service.ListProjectReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "reviews", reviews)
}

// ListProjectSessions handles GET /api/projects/:id/review-sessions request.
// @Summary List a project's review sessions
// @Tags Reviews
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{} "success envelope with sessions"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/projects/{id}/review-sessions [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListProjectSessions(c *gin.Context) {
	sessions, err := h.service.ListProjectSessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "sessions", sessions)
}

// ListReviewerAssignments handles GET /api/users/:id/assignments request.
// @Summary List a reviewer's assignments
// @Tags Reviews
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{} "success envelope with assignments"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/users/{id}/assignments [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListReviewerAssignments(c *gin.Context) {
	assignments, err := h.service.ListReviewerAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "assignments", assignments)
}
