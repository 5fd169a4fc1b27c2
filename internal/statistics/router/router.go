// Package router provides statistics module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/statistics/handler"
	"github.com/festy23/stagegate/internal/statistics/repository"
	"github.com/festy23/stagegate/internal/statistics/service"
)

// RegisterRoutes registers statistics module routes on the authenticated API group.
func RegisterRoutes(api *gin.RouterGroup, db *gorm.DB, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	svc := service.New(repo, logger)
	h := handler.New(svc, logger)

	api.GET("/statistics/reviewers", h.GetReviewersStatistics)
	api.GET("/statistics/sessions", h.GetSessionStatistics)
}
