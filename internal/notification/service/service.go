// Package service turns committed events into in-app notifications and
// serves them to their recipients.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/events"
	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/notification/model"
	"github.com/festy23/stagegate/internal/notification/repository"
)

// Service defines the interface for notification operations.
type Service interface {
	events.Sink

	// ListForUser returns the principal's notifications, newest first.
	ListForUser(ctx context.Context, principal identity.Principal, unreadOnly bool) ([]model.Notification, error)

	// MarkRead marks one of the principal's notifications as read.
	MarkRead(ctx context.Context, principal identity.Principal, notificationID string) (*model.Notification, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new notification service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{repo: repo, logger: logger}
}

// Deliver writes one notification per recipient of event.
func (s *service) Deliver(ctx context.Context, event events.Event) error {
	recipients := events.Recipients(event.Recipients...)
	if len(recipients) == 0 {
		return nil
	}

	data := "{}"
	if len(event.Data) > 0 {
		raw, err := json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("marshal notification data: %w", err)
		}
		data = string(raw)
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	notifications := make([]model.Notification, 0, len(recipients))
	for _, userID := range recipients {
		notifications = append(notifications, model.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      event.Type,
			Title:     event.Title,
			Message:   event.Message,
			Data:      data,
			CreatedAt: createdAt,
		})
	}

	if err := s.repo.CreateMany(ctx, notifications); err != nil {
		return err
	}

	s.logger.Debugw("notifications written", "type", event.Type, "count", len(notifications))
	return nil
}

// ListForUser returns the principal's notifications.
func (s *service) ListForUser(
	ctx context.Context,
	principal identity.Principal,
	unreadOnly bool,
) ([]model.Notification, error) {
	return s.repo.ListForUser(ctx, principal.UserID, unreadOnly)
}

// MarkRead marks one of the principal's notifications as read.
func (s *service) MarkRead(
	ctx context.Context,
	principal identity.Principal,
	notificationID string,
) (*model.Notification, error) {
	s.logger.Debugw("MarkRead called", "notification_id", notificationID, "user_id", principal.UserID)
	return s.repo.MarkRead(ctx, notificationID, principal.UserID)
}
