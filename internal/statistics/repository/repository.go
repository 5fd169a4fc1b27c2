// Package repository provides data access layer for statistics module.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/identity"
	reviewModel "github.com/festy23/stagegate/internal/review/model"
	"github.com/festy23/stagegate/internal/statistics/model"
)

// Repository defines the interface for statistics data access operations.
type Repository interface {
	// GetReviewersStatistics returns statistics for every reviewer and every
	// user that holds an assignment.
	GetReviewersStatistics(ctx context.Context) ([]model.ReviewerStatistics, error)

	// CountSessionsByStatus returns the number of sessions per status.
	CountSessionsByStatus(ctx context.Context) ([]model.GroupCount, error)

	// CountApprovedByDecision returns the number of approved sessions per outcome.
	CountApprovedByDecision(ctx context.Context) ([]model.GroupCount, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new statistics repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// GetReviewersStatistics returns statistics for all reviewers.
func (r *repository) GetReviewersStatistics(ctx context.Context) ([]model.ReviewerStatistics, error) {
	r.logger.Debugw("GetReviewersStatistics called")

	var stats []model.ReviewerStatistics

	err := r.db.WithContext(ctx).
		Table("users").
		Select(`
			users.user_id,
			users.name,
			users.role,
			users.is_active,
			COALESCE(assigned.assigned_count, 0) as assigned_count,
			COALESCE(assigned.completed_count, 0) as completed_count,
			scored.average_score
		`).
		Joins(`
			LEFT JOIN (
				SELECT reviewer_id,
					COUNT(*) as assigned_count,
					SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as completed_count
				FROM review_assignments
				GROUP BY reviewer_id
			) assigned ON users.user_id = assigned.reviewer_id
		`, reviewModel.AssignmentCompleted).
		Joins(`
			LEFT JOIN (
				SELECT reviewer_id, AVG(score) as average_score
				FROM gate_reviews
				WHERE is_completed = ? AND score IS NOT NULL
				GROUP BY reviewer_id
			) scored ON users.user_id = scored.reviewer_id
		`, true).
		Where("users.role = ? OR assigned.assigned_count > 0", identity.RoleReviewer).
		Order("assigned_count DESC, users.user_id ASC").
		Scan(&stats).Error

	if err != nil {
		r.logger.Errorw("GetReviewersStatistics database error", "error", err)
		return nil, err
	}

	if stats == nil {
		stats = []model.ReviewerStatistics{}
	}

	r.logger.Debugw("GetReviewersStatistics completed", "count", len(stats))
	return stats, nil
}

// CountSessionsByStatus returns the number of sessions per status.
func (r *repository) CountSessionsByStatus(ctx context.Context) ([]model.GroupCount, error) {
	var counts []model.GroupCount
	err := r.db.WithContext(ctx).
		Model(&reviewModel.ReviewSession{}).
		Select("status as group_key, COUNT(*) as group_count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		r.logger.Errorw("CountSessionsByStatus database error", "error", err)
		return nil, err
	}
	return counts, nil
}

// CountApprovedByDecision returns the number of approved sessions per outcome.
func (r *repository) CountApprovedByDecision(ctx context.Context) ([]model.GroupCount, error) {
	var counts []model.GroupCount
	err := r.db.WithContext(ctx).
		Model(&reviewModel.ReviewSession{}).
		Select("decision as group_key, COUNT(*) as group_count").
		Where("status = ? AND decision IS NOT NULL", reviewModel.SessionApproved).
		Group("decision").
		Scan(&counts).Error
	if err != nil {
		r.logger.Errorw("CountApprovedByDecision database error", "error", err)
		return nil, err
	}
	return counts, nil
}
