// Package repository provides data access for the audit log.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activityModel "github.com/festy23/stagegate/internal/activity/model"
)

// Repository defines the interface for audit log access.
type Repository interface {
	// Record appends an entry. Call it with the transaction of the change it
	// describes so both commit together.
	Record(ctx context.Context, entry activityModel.Entry) (*activityModel.ActivityLog, error)

	// ListByProject returns a project's entries, newest first.
	ListByProject(ctx context.Context, projectID string, limit int) ([]activityModel.ActivityLog, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new activity repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// Record appends an entry.
func (r *repository) Record(ctx context.Context, entry activityModel.Entry) (*activityModel.ActivityLog, error) {
	details := "{}"
	if len(entry.Details) > 0 {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("marshal activity details: %w", err)
		}
		details = string(data)
	}

	log := &activityModel.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    entry.UserID,
		Action:    entry.Action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if entry.ProjectID != "" {
		projectID := entry.ProjectID
		log.ProjectID = &projectID
	}

	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		r.logger.Errorw("failed to record activity", "action", entry.Action, "project_id", entry.ProjectID, "error", err)
		return nil, err
	}
	return log, nil
}

// ListByProject returns a project's entries, newest first.
func (r *repository) ListByProject(
	ctx context.Context,
	projectID string,
	limit int,
) ([]activityModel.ActivityLog, error) {
	query := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var logs []activityModel.ActivityLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	if logs == nil {
		return []activityModel.ActivityLog{}, nil
	}
	return logs, nil
}
