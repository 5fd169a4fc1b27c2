// Package router provides project module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/project/handler"
	"github.com/festy23/stagegate/internal/project/repository"
	"github.com/festy23/stagegate/internal/project/service"
)

// RegisterRoutes registers project module routes on the authenticated API group.
func RegisterRoutes(api *gin.RouterGroup, db *gorm.DB, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	svc := service.New(repo, db, logger)
	h := handler.New(svc, logger)

	projects := api.Group("/projects")
	projects.POST("", h.CreateProject)
	projects.GET("", h.ListProjects)
	projects.GET("/:id", h.GetProject)
	projects.PATCH("/:id", h.UpdateProject)
	projects.DELETE("/:id", h.DeleteProject)
	projects.POST("/:id/members", h.AddMember)
}
