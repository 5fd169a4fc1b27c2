// Package router provides gate review module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/internal/events"
	"github.com/festy23/stagegate/internal/review/handler"
	"github.com/festy23/stagegate/internal/review/repository"
	"github.com/festy23/stagegate/internal/review/service"
)

// RegisterRoutes registers review module routes on the authenticated API group.
func RegisterRoutes(
	api *gin.RouterGroup,
	db *gorm.DB,
	rules config.GateConfig,
	publisher events.Publisher,
	logger *zap.SugaredLogger,
) {
	repo := repository.New(db, logger)
	svc := service.New(repo, db, rules, publisher, logger)
	h := handler.New(svc, logger)

	sessions := api.Group("/review-sessions")
	sessions.POST("", h.AssignReviewers)
	sessions.GET("/:id", h.GetSession)
	sessions.PUT("/:id", h.UpdateSession)
	sessions.POST("/:id/reviewers", h.AddReviewer)
	sessions.POST("/:id/start", h.StartAssignment)
	sessions.GET("/:id/assignments/:reviewerId", h.GetAssignment)

	reviews := api.Group("/reviews")
	reviews.POST("", h.SubmitReview)
	reviews.PUT("/:id", h.UpdateReview)

	api.POST("/projects/:id/reviews", h.RecordProjectReview)
	api.GET("/projects/:id/reviews", h.ListProjectReviews)
	api.GET("/projects/:id/review-sessions", h.ListProjectSessions)
	api.GET("/users/:id/assignments", h.ListReviewerAssignments)
}
