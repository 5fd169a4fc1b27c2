// Package router provides user module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/user/handler"
	"github.com/festy23/stagegate/internal/user/repository"
	"github.com/festy23/stagegate/internal/user/service"
)

// RegisterRoutes registers user module routes on the authenticated API group.
func RegisterRoutes(api *gin.RouterGroup, db *gorm.DB, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	svc := service.New(repo, logger)
	h := handler.New(svc, logger)

	api.POST("/users", h.UpsertUser)
	api.POST("/users/setIsActive", h.SetIsActive)
	api.GET("/users/:id", h.GetUser)
}
