// Package router provides notification module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/notification/handler"
	"github.com/festy23/stagegate/internal/notification/service"
)

// RegisterRoutes registers notification module routes on the authenticated
// API group. The service is shared with the event dispatcher.
func RegisterRoutes(api *gin.RouterGroup, svc service.Service, logger *zap.SugaredLogger) {
	h := handler.New(svc, logger)

	api.GET("/notifications", h.ListForUser)
	api.PUT("/notifications/:id/read", h.MarkRead)
}
