// Package handler provides HTTP handlers for statistics endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/response"
	"github.com/festy23/stagegate/internal/statistics/service"
)

// Handler handles HTTP requests for statistics endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new statistics handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetReviewersStatistics handles GET /api/statistics/reviewers request.
// @Summary Get workload and scoring statistics for reviewers
// @Tags Statistics
// @Produce json
// @Success 200 {object} map[string]interface{} "success envelope with statistics"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/statistics/reviewers [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetReviewersStatistics(c *gin.Context) {
	resp, err := h.service.GetReviewersStatistics(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "statistics", resp)
}

// GetSessionStatistics handles GET /api/statistics/sessions request.
// @Summary Get review session totals
// @Tags Statistics
// @Produce json
// @Success 200 {object} map[string]interface{} "success envelope with statistics"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/statistics/sessions [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetSessionStatistics(c *gin.Context) {
	resp, err := h.service.GetSessionStatistics(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, "statistics", resp.Statistics)
}
