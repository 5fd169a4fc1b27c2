// Package health provides liveness and readiness endpoints.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/database/database"
)

const checkTimeout = 5 * time.Second

// Handler handles health check requests.
type Handler struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new health handler instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
	}
}

// Response represents health check response.
type Response struct {
	Status   string         `json:"status"`
	Database *DatabaseState `json:"database,omitempty"`
}

// DatabaseState reports connection pool usage.
type DatabaseState struct {
	OpenConnections int `json:"open_connections"`
	InUse           int `json:"in_use"`
	Idle            int `json:"idle"`
}

// Check handles GET /health request.
func (h *Handler) Check(c *gin.Context) {
	if !h.ping(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, Response{Status: "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, Response{Status: "ok"})
}

// Ready handles GET /health/ready. It adds pool statistics to the database
// check so operators can spot exhausted pools.
func (h *Handler) Ready(c *gin.Context) {
	if !h.ping(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, Response{Status: "unhealthy"})
		return
	}

	stats, err := database.GetStats(h.db)
	if err != nil {
		h.logger.Warnw("failed to read pool stats", "error", err)
		c.JSON(http.StatusServiceUnavailable, Response{Status: "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Status: "ok",
		Database: &DatabaseState{
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
		},
	})
}

func (h *Handler) ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		return false
	}
	return true
}
