// Package service provides business logic layer for user module.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/user/model"
	"github.com/festy23/stagegate/internal/user/repository"
)

// Service defines the interface for user business logic operations.
type Service interface {
	// UpsertUser creates or replaces a directory entry. Admin only.
	UpsertUser(ctx context.Context, principal identity.Principal, req *model.UpsertUserRequest) (*model.User, error)

	// GetUser returns a directory entry.
	GetUser(ctx context.Context, userID string) (*model.User, error)

	// SetIsActive updates user activity status. Admin only.
	SetIsActive(ctx context.Context, principal identity.Principal, req *model.SetIsActiveRequest) (*model.User, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new user service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{repo: repo, logger: logger}
}

// UpsertUser creates or replaces a directory entry.
func (s *service) UpsertUser(
	ctx context.Context,
	principal identity.Principal,
	req *model.UpsertUserRequest,
) (*model.User, error) {
	s.logger.Debugw("UpsertUser called", "user_id", req.UserID, "actor", principal.UserID)

	if !identity.HasRole(principal, identity.RoleAdmin) {
		return nil, model.ErrAdminRequired
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" || len(userID) > 255 {
		return nil, model.ErrInvalidUserID
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrInvalidName
	}
	role, ok := identity.ParseRole(req.Role)
	if !ok {
		return nil, model.ErrInvalidRole
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := s.repo.Upsert(ctx, &model.User{
		UserID:   userID,
		Name:     name,
		Email:    strings.TrimSpace(req.Email),
		Role:     role,
		IsActive: isActive,
	})
	if err != nil {
		s.logger.Errorw("UpsertUser failed", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Infow("UpsertUser completed", "user_id", userID, "role", role, "is_active", isActive)
	return user, nil
}

// GetUser returns a directory entry.
func (s *service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, model.ErrInvalidUserID
	}
	return s.repo.GetByID(ctx, userID)
}

// SetIsActive updates user activity status.
func (s *service) SetIsActive(
	ctx context.Context,
	principal identity.Principal,
	req *model.SetIsActiveRequest,
) (*model.User, error) {
	s.logger.Debugw("SetIsActive called", "user_id", req.UserID, "is_active", req.IsActive)

	if !identity.HasRole(principal, identity.RoleAdmin) {
		return nil, model.ErrAdminRequired
	}

	if req.UserID == "" {
		s.logger.Debugw("SetIsActive validation failed", "error", "empty user_id")
		return nil, model.ErrInvalidUserID
	}

	if req.IsActive == nil {
		s.logger.Debugw("SetIsActive validation failed", "error", "is_active is nil")
		return nil, model.ErrInvalidIsActive
	}

	user, err := s.repo.UpdateIsActive(ctx, req.UserID, *req.IsActive)
	if err != nil {
		s.logger.Errorw("SetIsActive failed", "user_id", req.UserID, "is_active", *req.IsActive, "error", err)
		return nil, err
	}

	s.logger.Infow("SetIsActive completed", "user_id", req.UserID, "new_state", *req.IsActive)
	return user, nil
}
