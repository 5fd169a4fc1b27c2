// Package server assembles the HTTP application: middleware, module routes
// and the post-commit event dispatcher.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activityRouter "github.com/festy23/stagegate/internal/activity/router"
	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/internal/events"
	"github.com/festy23/stagegate/internal/health"
	"github.com/festy23/stagegate/internal/middleware"
	notificationRepository "github.com/festy23/stagegate/internal/notification/repository"
	notificationRouter "github.com/festy23/stagegate/internal/notification/router"
	notificationService "github.com/festy23/stagegate/internal/notification/service"
	projectRouter "github.com/festy23/stagegate/internal/project/router"
	redflagRouter "github.com/festy23/stagegate/internal/redflag/router"
	reviewRouter "github.com/festy23/stagegate/internal/review/router"
	statisticsRouter "github.com/festy23/stagegate/internal/statistics/router"
	userRouter "github.com/festy23/stagegate/internal/user/router"
)

// Server owns the HTTP listener and the event dispatcher.
type Server struct {
	cfg        config.Config
	engine     *gin.Engine
	dispatcher *events.Dispatcher
	httpServer *http.Server
	logger     *zap.SugaredLogger
}

// New wires every module against db. Notifications are the dispatcher's sink.
func New(cfg config.Config, db *gorm.DB, logger *zap.SugaredLogger) *Server {
	notifications := notificationService.New(notificationRepository.New(db, logger), logger)
	dispatcher := events.NewDispatcher(notifications, cfg.Events, logger)

	engine := NewEngine(cfg, db, dispatcher, notifications, logger)

	return &Server{
		cfg:        cfg,
		engine:     engine,
		dispatcher: dispatcher,
		httpServer: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		logger: logger,
	}
}

// NewEngine builds the gin engine. /health is public and everything under
// /api requires a principal.
func NewEngine(
	cfg config.Config,
	db *gorm.DB,
	publisher events.Publisher,
	notifications notificationService.Service,
	logger *zap.SugaredLogger,
) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(logger), middleware.Logger(logger))

	healthHandler := health.New(db, logger)
	r.GET("/health", healthHandler.Check)
	r.GET("/health/ready", healthHandler.Ready)

	api := r.Group("/api")
	api.Use(middleware.Auth(cfg.Auth, logger))

	userRouter.RegisterRoutes(api, db, logger)
	projectRouter.RegisterRoutes(api, db, logger)
	activityRouter.RegisterRoutes(api, db, logger)
	reviewRouter.RegisterRoutes(api, db, cfg.Gate, publisher, logger)
	redflagRouter.RegisterRoutes(api, db, publisher, logger)
	notificationRouter.RegisterRoutes(api, notifications, logger)
	statisticsRouter.RegisterRoutes(api, db, logger)

	return r
}

// Handler exposes the engine for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down within ShutdownTimeout.
// Queued events are drained after the listener closes.
func (s *Server) Run(ctx context.Context) error {
	s.dispatcher.Start()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP server listening", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			_ = s.dispatcher.Stop(context.Background())
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Infow("shutting down HTTP server")
	httpErr := s.httpServer.Shutdown(ctx)
	if httpErr != nil {
		s.logger.Errorw("HTTP server shutdown failed", "error", httpErr)
	}
	if err := s.dispatcher.Stop(ctx); err != nil {
		s.logger.Warnw("event dispatcher did not drain", "error", err)
	}
	return httpErr
}
