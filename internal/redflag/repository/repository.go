// Package repository provides data access layer for red flags.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/stagegate/internal/redflag/model"
)

// Repository defines the interface for red flag data access operations.
type Repository interface {
	// Create inserts a red flag.
	Create(ctx context.Context, flag *model.RedFlag) error

	// GetForUpdate finds a red flag and locks its row.
	GetForUpdate(ctx context.Context, flagID string) (*model.RedFlag, error)

	// ListByProject returns a project's red flags, newest first.
	ListByProject(ctx context.Context, projectID string) ([]model.RedFlag, error)

	// Resolve marks an open flag resolved. It reports whether the flag was open.
	Resolve(ctx context.Context, flagID, resolvedBy string) (bool, error)

	// CountOpen returns the number of open flags of a project.
	CountOpen(ctx context.Context, projectID string) (int64, error)

	// DeleteByProject removes every red flag of a project.
	DeleteByProject(ctx context.Context, projectID string) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new red flag repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// Create inserts a red flag.
func (r *repository) Create(ctx context.Context, flag *model.RedFlag) error {
	if err := r.db.WithContext(ctx).Create(flag).Error; err != nil {
		r.logger.Errorw("Create red flag database error", "project_id", flag.ProjectID, "error", err)
		return err
	}
	return nil
}

// GetForUpdate finds a red flag and locks its row.
func (r *repository) GetForUpdate(ctx context.Context, flagID string) (*model.RedFlag, error) {
	var flag model.RedFlag
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", flagID).
		First(&flag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRedFlagNotFound
		}
		return nil, err
	}
	return &flag, nil
}

// ListByProject returns a project's red flags, newest first.
func (r *repository) ListByProject(ctx context.Context, projectID string) ([]model.RedFlag, error) {
	var flags []model.RedFlag
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&flags).Error
	if err != nil {
		return nil, err
	}
	if flags == nil {
		flags = []model.RedFlag{}
	}
	return flags, nil
}

// Resolve marks an open flag resolved.
func (r *repository) Resolve(ctx context.Context, flagID, resolvedBy string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.RedFlag{}).
		Where("id = ? AND status = ?", flagID, model.StatusOpen).
		Updates(map[string]any{
			"status":      model.StatusResolved,
			"resolved_by": resolvedBy,
			"resolved_at": time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("Resolve database error", "flag_id", flagID, "error", result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountOpen returns the number of open flags of a project.
func (r *repository) CountOpen(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RedFlag{}).
		Where("project_id = ? AND status = ?", projectID, model.StatusOpen).
		Count(&count).Error
	return count, err
}

// DeleteByProject removes every red flag of a project.
func (r *repository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&model.RedFlag{}).Error
}
