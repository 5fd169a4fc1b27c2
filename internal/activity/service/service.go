// Package service provides read access to the audit log.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/activity/model"
	"github.com/festy23/stagegate/internal/activity/repository"
	"github.com/festy23/stagegate/internal/apperr"
)

// Page size bounds for ListProjectActivity.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// ErrInvalidProjectID indicates a missing project id.
var ErrInvalidProjectID = apperr.Validation("project id is required")

// Service defines the interface for audit log queries.
type Service interface {
	// ListProjectActivity returns a project's audit entries, newest first.
	// Entries outlive the project they describe.
	ListProjectActivity(ctx context.Context, projectID string, limit int) ([]model.ActivityLog, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new activity service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{repo: repo, logger: logger}
}

// ListProjectActivity returns a project's audit entries, newest first.
func (s *service) ListProjectActivity(ctx context.Context, projectID string, limit int) ([]model.ActivityLog, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidProjectID
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	logs, err := s.repo.ListByProject(ctx, projectID, limit)
	if err != nil {
		s.logger.Errorw("ListProjectActivity failed", "project_id", projectID, "error", err)
		return nil, err
	}
	return logs, nil
}
