// Package router provides red flag module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/events"
	"github.com/festy23/stagegate/internal/redflag/handler"
	"github.com/festy23/stagegate/internal/redflag/repository"
	"github.com/festy23/stagegate/internal/redflag/service"
)

// RegisterRoutes registers red flag routes on the authenticated API group.
func RegisterRoutes(api *gin.RouterGroup, db *gorm.DB, publisher events.Publisher, logger *zap.SugaredLogger) {
	svc := service.New(repository.New(db, logger), db, publisher, logger)
	h := handler.New(svc, logger)

	api.POST("/projects/:id/red-flags", h.Raise)
	api.GET("/projects/:id/red-flags", h.List)
	api.PUT("/red-flags/:id/resolve", h.Resolve)
}
