// Package repository provides data access layer for user module.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/stagegate/internal/user/model"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	// GetByID finds user by user_id.
	GetByID(ctx context.Context, userID string) (*model.User, error)

	// Upsert creates the user or replaces name, email, role and is_active.
	Upsert(ctx context.Context, user *model.User) (*model.User, error)

	// UpdateIsActive updates user's is_active flag.
	UpdateIsActive(ctx context.Context, userID string, isActive bool) (*model.User, error)

	// FindActive returns the active users among userIDs.
	FindActive(ctx context.Context, userIDs []string) ([]model.User, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new user repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// GetByID finds user by user_id.
func (r *repository) GetByID(ctx context.Context, userID string) (*model.User, error) {
	r.logger.Debugw("GetByID called", "user_id", userID)

	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debugw("GetByID user not found", "user_id", userID)
			return nil, model.ErrUserNotFound
		}
		r.logger.Errorw("GetByID database error", "user_id", userID, "error", err)
		return nil, err
	}

	return &user, nil
}

// Upsert creates the user or replaces its mutable attributes in one statement.
func (r *repository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	r.logger.Infow("Upsert called", "user_id", user.UserID, "role", user.Role)

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "is_active", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		r.logger.Errorw("Upsert database error", "user_id", user.UserID, "error", err)
		return nil, err
	}

	return r.GetByID(ctx, user.UserID)
}

// UpdateIsActive updates user's is_active flag.
func (r *repository) UpdateIsActive(ctx context.Context, userID string, isActive bool) (*model.User, error) {
	r.logger.Infow("UpdateIsActive called", "user_id", userID, "new_state", isActive)

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"is_active":  isActive,
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		r.logger.Errorw("UpdateIsActive database error", "user_id", userID, "error", result.Error)
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.Debugw("UpdateIsActive user not found", "user_id", userID)
		return nil, model.ErrUserNotFound
	}

	return r.GetByID(ctx, userID)
}

// FindActive returns the active users among userIDs.
func (r *repository) FindActive(ctx context.Context, userIDs []string) ([]model.User, error) {
	if len(userIDs) == 0 {
		return []model.User{}, nil
	}

	var users []model.User
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND is_active = ?", userIDs, true).
		Order("user_id ASC").
		Find(&users).Error
	if err != nil {
		r.logger.Errorw("FindActive database error", "count", len(userIDs), "error", err)
		return nil, err
	}

	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
