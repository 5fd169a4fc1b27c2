// Package router provides activity module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/activity/handler"
	"github.com/festy23/stagegate/internal/activity/repository"
	"github.com/festy23/stagegate/internal/activity/service"
)

// RegisterRoutes registers activity module routes on the authenticated API group.
func RegisterRoutes(api *gin.RouterGroup, db *gorm.DB, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	svc := service.New(repo, logger)
	h := handler.New(svc, logger)

	api.GET("/projects/:id/activity", h.ListProjectActivity)
}
