// Package service provides business logic layer for statistics module.
package service

import (
	"context"

	"go.uber.org/zap"

	reviewModel "github.com/festy23/stagegate/internal/review/model"
	"github.com/festy23/stagegate/internal/review/policy"
	"github.com/festy23/stagegate/internal/statistics/model"
	"github.com/festy23/stagegate/internal/statistics/repository"
)

// Service defines the interface for statistics business logic operations.
type Service interface {
	// GetReviewersStatistics returns statistics for all reviewers.
	GetReviewersStatistics(ctx context.Context) (*model.ReviewersStatisticsResponse, error)

	// GetSessionStatistics returns review session totals.
	GetSessionStatistics(ctx context.Context) (*model.SessionStatisticsResponse, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new statistics service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

// GetReviewersStatistics returns statistics for all reviewers.
func (s *service) GetReviewersStatistics(ctx context.Context) (*model.ReviewersStatisticsResponse, error) {
	s.logger.Debugw("GetReviewersStatistics called")

	reviewers, err := s.repo.GetReviewersStatistics(ctx)
	if err != nil {
		s.logger.Errorw("GetReviewersStatistics failed", "error", err)
		return nil, err
	}

	if reviewers == nil {
		reviewers = []model.ReviewerStatistics{}
	}
	for i := range reviewers {
		reviewers[i].AverageScoreFivePoint = policy.FivePointPtr(reviewers[i].AverageScore)
	}

	s.logger.Infow("GetReviewersStatistics completed", "count", len(reviewers))
	return &model.ReviewersStatisticsResponse{
		Reviewers: reviewers,
		Total:     len(reviewers),
	}, nil
}

// GetSessionStatistics returns review session totals.
func (s *service) GetSessionStatistics(ctx context.Context) (*model.SessionStatisticsResponse, error) {
	s.logger.Debugw("GetSessionStatistics called")

	byStatus, err := s.repo.CountSessionsByStatus(ctx)
	if err != nil {
		s.logger.Errorw("GetSessionStatistics failed", "error", err)
		return nil, err
	}
	byDecision, err := s.repo.CountApprovedByDecision(ctx)
	if err != nil {
		s.logger.Errorw("GetSessionStatistics failed", "error", err)
		return nil, err
	}

	stats := model.SessionStatistics{
		ByStatus:   make(map[string]int),
		ByDecision: make(map[string]int, len(reviewModel.Decisions)),
	}
	for _, st := range []reviewModel.SessionStatus{
		reviewModel.SessionPending,
		reviewModel.SessionInProgress,
		reviewModel.SessionCompleted,
		reviewModel.SessionApproved,
		reviewModel.SessionClosed,
	} {
		stats.ByStatus[string(st)] = 0
	}
	for _, d := range reviewModel.Decisions {
		stats.ByDecision[string(d)] = 0
	}

	for _, c := range byStatus {
		stats.ByStatus[c.Key] += int(c.Count)
		stats.TotalSessions += int(c.Count)
	}
	for _, c := range byDecision {
		stats.ByDecision[c.Key] += int(c.Count)
	}

	s.logger.Infow("GetSessionStatistics completed", "total_sessions", stats.TotalSessions)
	return &model.SessionStatisticsResponse{Statistics: stats}, nil
}
