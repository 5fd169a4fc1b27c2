// Package repository provides data access layer for notifications.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/notification/model"
)

// Repository defines the interface for notification data access operations.
type Repository interface {
	// CreateMany inserts notifications in one statement.
	CreateMany(ctx context.Context, notifications []model.Notification) error

	// ListForUser returns a user's notifications, newest first.
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)

	// MarkRead marks a notification addressed to userID as read.
	MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new notification repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// CreateMany inserts notifications in one statement.
func (r *repository) CreateMany(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&notifications).Error; err != nil {
		r.logger.Errorw("CreateMany database error", "count", len(notifications), "error", err)
		return err
	}
	return nil
}

// ListForUser returns a user's notifications, newest first.
func (r *repository) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []model.Notification
	if err := query.Order("created_at DESC").Order("id ASC").Find(&notifications).Error; err != nil {
		r.logger.Errorw("ListForUser database error", "user_id", userID, "error", err)
		return nil, err
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	return notifications, nil
}

// MarkRead marks a notification addressed to userID as read. Notifications
// of other users are reported as missing.
func (r *repository) MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		r.logger.Errorw("MarkRead database error", "notification_id", notificationID, "error", result.Error)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, model.ErrNotificationNotFound
	}

	var notification model.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", notificationID).First(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}
