// Package repository provides data access layer for review sessions,
// assignments and gate reviews.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/stagegate/internal/database/dberr"
	projectModel "github.com/festy23/stagegate/internal/project/model"
	"github.com/festy23/stagegate/internal/review/model"
)

// Repository defines the interface for review data access operations.
// Conditional writes report whether a row matched so callers can tell a lost
// race from success.
type Repository interface {
	// CreateSession inserts a session. A second open session for the same
	// project stage fails with ErrOpenSessionExists.
	CreateSession(ctx context.Context, session *model.ReviewSession) error

	// GetSession finds a session by id.
	GetSession(ctx context.Context, sessionID string) (*model.ReviewSession, error)

	// GetSessionForUpdate finds a session and locks its row until the
	// surrounding transaction ends.
	GetSessionForUpdate(ctx context.Context, sessionID string) (*model.ReviewSession, error)

	// FindOpenSession returns the open session of a project stage.
	FindOpenSession(ctx context.Context, projectID string, stage projectModel.Stage) (*model.ReviewSession, error)

	// ListSessionsByProject returns a project's sessions, oldest first.
	ListSessionsByProject(ctx context.Context, projectID string) ([]model.ReviewSession, error)

	// UpdateSession writes the given columns when the session status is one
	// of from. An empty from matches any status.
	UpdateSession(
		ctx context.Context,
		sessionID string,
		from []model.SessionStatus,
		fields map[string]any,
	) (bool, error)

	// CreateAssignments inserts assignments. A reviewer already in the
	// session fails with ErrReviewerAssigned.
	CreateAssignments(ctx context.Context, assignments []model.ReviewAssignment) error

	// GetAssignment finds the assignment of a reviewer in a session.
	GetAssignment(ctx context.Context, sessionID, reviewerID string) (*model.ReviewAssignment, error)

	// ListAssignments returns a session's assignments ordered by reviewer.
	ListAssignments(ctx context.Context, sessionID string) ([]model.ReviewAssignment, error)

	// SetAssignmentStatus moves an assignment from one of from to status.
	SetAssignmentStatus(
		ctx context.Context,
		sessionID, reviewerID string,
		from []model.AssignmentStatus,
		status model.AssignmentStatus,
	) (bool, error)

	// ListReviewerAssignments returns a reviewer's assignments with their
	// sessions, newest first.
	ListReviewerAssignments(ctx context.Context, reviewerID string) ([]model.ReviewerAssignment, error)

	// CreateReviews inserts gate review placeholders.
	CreateReviews(ctx context.Context, reviews []model.GateReview) error

	// GetReview finds a gate review by id.
	GetReview(ctx context.Context, reviewID string) (*model.GateReview, error)

	// GetSessionReview finds the gate review of a reviewer in a session.
	GetSessionReview(ctx context.Context, sessionID, reviewerID string) (*model.GateReview, error)

	// WriteReview stores a submission on a review whose completion flag
	// equals completed, and marks it completed.
	WriteReview(ctx context.Context, reviewID string, completed bool, fields map[string]any) (bool, error)

	// ListSessionReviews returns a session's gate reviews ordered by reviewer.
	ListSessionReviews(ctx context.Context, sessionID string) ([]model.GateReview, error)

	// ListProjectReviews returns a project's gate reviews, oldest first.
	ListProjectReviews(ctx context.Context, projectID string) ([]model.GateReview, error)

	// DeleteByProject removes every gate review, assignment and session of
	// a project.
	DeleteByProject(ctx context.Context, projectID string) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new review repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// CreateSession inserts a session.
func (r *repository) CreateSession(ctx context.Context, session *model.ReviewSession) error {
	r.logger.Debugw("CreateSession called", "session_id", session.ID, "project_id", session.ProjectID)

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return model.ErrOpenSessionExists
		}
		r.logger.Errorw("CreateSession database error", "session_id", session.ID, "error", err)
		return err
	}
	return nil
}

// GetSession finds a session by id.
func (r *repository) GetSession(ctx context.Context, sessionID string) (*model.ReviewSession, error) {
	return r.getSession(r.db.WithContext(ctx), sessionID)
}

// GetSessionForUpdate finds a session and locks its row.
func (r *repository) GetSessionForUpdate(ctx context.Context, sessionID string) (*model.ReviewSession, error) {
	return r.getSession(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), sessionID)
}

func (r *repository) getSession(db *gorm.DB, sessionID string) (*model.ReviewSession, error) {
	var session model.ReviewSession
	if err := db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrSessionNotFound
		}
		r.logger.Errorw("get session database error", "session_id", sessionID, "error", err)
		return nil, err
	}
	return &session, nil
}

// FindOpenSession returns the open session of a project stage.
func (r *repository) FindOpenSession(
	ctx context.Context,
	projectID string,
	stage projectModel.Stage,
) (*model.ReviewSession, error) {
	var session model.ReviewSession
	err := r.db.WithContext(ctx).
		Where("open_slot = ?", model.OpenSlot(projectID, stage)).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNoOpenSession
		}
		return nil, err
	}
	return &session, nil
}

// ListSessionsByProject returns a project's sessions, oldest first.
func (r *repository) ListSessionsByProject(ctx context.Context, projectID string) ([]model.ReviewSession, error) {
	var sessions []model.ReviewSession
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&sessions).Error
	if err != nil {
		r.logger.Errorw("ListSessionsByProject database error", "project_id", projectID, "error", err)
		return nil, err
	}
	if sessions == nil {
		sessions = []model.ReviewSession{}
	}
	return sessions, nil
}

// UpdateSession writes the given columns when the status matches.
func (r *repository) UpdateSession(
	ctx context.Context,
	sessionID string,
	from []model.SessionStatus,
	fields map[string]any,
) (bool, error) {
	fields["updated_at"] = time.Now().UTC()

	query := r.db.WithContext(ctx).
		Model(&model.ReviewSession{}).
		Where("id = ?", sessionID)
	if len(from) > 0 {
		query = query.Where("status IN ?", from)
	}

	result := query.Updates(fields)
	if result.Error != nil {
		if dberr.IsUniqueViolation(result.Error) {
			return false, model.ErrOpenSessionExists
		}
		r.logger.Errorw("UpdateSession database error", "session_id", sessionID, "error", result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateAssignments inserts assignments.
func (r *repository) CreateAssignments(ctx context.Context, assignments []model.ReviewAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&assignments).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return model.ErrReviewerAssigned
		}
		r.logger.Errorw("CreateAssignments database error", "count", len(assignments), "error", err)
		return err
	}
	return nil
}

// GetAssignment finds the assignment of a reviewer in a session.
func (r *repository) GetAssignment(
	ctx context.Context,
	sessionID, reviewerID string,
) (*model.ReviewAssignment, error) {
	var assignment model.ReviewAssignment
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND reviewer_id = ?", sessionID, reviewerID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// ListAssignments returns a session's assignments ordered by reviewer.
func (r *repository) ListAssignments(ctx context.Context, sessionID string) ([]model.ReviewAssignment, error) {
	var assignments []model.ReviewAssignment
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("reviewer_id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []model.ReviewAssignment{}
	}
	return assignments, nil
}

// SetAssignmentStatus moves an assignment to status.
func (r *repository) SetAssignmentStatus(
	ctx context.Context,
	sessionID, reviewerID string,
	from []model.AssignmentStatus,
	status model.AssignmentStatus,
) (bool, error) {
	fields := map[string]any{"status": status}
	if status == model.AssignmentCompleted {
		fields["completed_at"] = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&model.ReviewAssignment{}).
		Where("session_id = ? AND reviewer_id = ? AND status IN ?", sessionID, reviewerID, from).
		Updates(fields)
	if result.Error != nil {
		r.logger.Errorw("SetAssignmentStatus database error",
			"session_id", sessionID, "reviewer_id", reviewerID, "error", result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListReviewerAssignments returns a reviewer's assignments with their sessions.
func (r *repository) ListReviewerAssignments(
	ctx context.Context,
	reviewerID string,
) ([]model.ReviewerAssignment, error) {
	var rows []model.ReviewerAssignment
	err := r.db.WithContext(ctx).
		Table("review_assignments").
		Select(`
			review_assignments.session_id,
			review_sessions.project_id,
			review_sessions.stage,
			review_sessions.status AS session_status,
			review_assignments.status,
			review_sessions.due_date,
			review_assignments.assigned_at
		`).
		Joins("JOIN review_sessions ON review_sessions.id = review_assignments.session_id").
		Where("review_assignments.reviewer_id = ?", reviewerID).
		Order("review_assignments.assigned_at DESC").
		Order("review_assignments.session_id ASC").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("ListReviewerAssignments database error", "reviewer_id", reviewerID, "error", err)
		return nil, err
	}
	if rows == nil {
		rows = []model.ReviewerAssignment{}
	}
	return rows, nil
}

// CreateReviews inserts gate review placeholders.
func (r *repository) CreateReviews(ctx context.Context, reviews []model.GateReview) error {
	if len(reviews) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&reviews).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return model.ErrReviewerAssigned
		}
		r.logger.Errorw("CreateReviews database error", "count", len(reviews), "error", err)
		return err
	}
	return nil
}

// GetReview finds a gate review by id.
func (r *repository) GetReview(ctx context.Context, reviewID string) (*model.GateReview, error) {
	var review model.GateReview
	if err := r.db.WithContext(ctx).Where("id = ?", reviewID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// GetSessionReview finds the gate review of a reviewer in a session.
func (r *repository) GetSessionReview(ctx context.Context, sessionID, reviewerID string) (*model.GateReview, error) {
	var review model.GateReview
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND reviewer_id = ?", sessionID, reviewerID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// WriteReview stores a submission on a review whose completion flag equals completed.
func (r *repository) WriteReview(
	ctx context.Context,
	reviewID string,
	completed bool,
	fields map[string]any,
) (bool, error) {
	fields["is_completed"] = true
	fields["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&model.GateReview{}).
		Where("id = ? AND is_completed = ?", reviewID, completed).
		Updates(fields)
	if result.Error != nil {
		r.logger.Errorw("WriteReview database error", "review_id", reviewID, "error", result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListSessionReviews returns a session's gate reviews ordered by reviewer.
func (r *repository) ListSessionReviews(ctx context.Context, sessionID string) ([]model.GateReview, error) {
	return r.listReviews(ctx, "session_id = ?", sessionID, "reviewer_id ASC")
}

// ListProjectReviews returns a project's gate reviews, oldest first.
func (r *repository) ListProjectReviews(ctx context.Context, projectID string) ([]model.GateReview, error) {
	return r.listReviews(ctx, "project_id = ?", projectID, "created_at ASC")
}

func (r *repository) listReviews(ctx context.Context, where string, arg any, order string) ([]model.GateReview, error) {
	var reviews []model.GateReview
	err := r.db.WithContext(ctx).
		Where(where, arg).
		Order(order).
		Order("id ASC").
		Find(&reviews).Error
	if err != nil {
		r.logger.Errorw("list reviews database error", "filter", where, "error", err)
		return nil, err
	}
	if reviews == nil {
		reviews = []model.GateReview{}
	}
	return reviews, nil
}

// DeleteByProject removes every gate review, assignment and session of a project.
func (r *repository) DeleteByProject(ctx context.Context, projectID string) error {
	db := r.db.WithContext(ctx)

	sessionIDs := db.Model(&model.ReviewSession{}).Select("id").Where("project_id = ?", projectID)

	if err := db.Where("project_id = ?", projectID).Delete(&model.GateReview{}).Error; err != nil {
		return err
	}
	if err := db.Where("session_id IN (?)", sessionIDs).Delete(&model.ReviewAssignment{}).Error; err != nil {
		return err
	}
	if err := db.Where("project_id = ?", projectID).Delete(&model.ReviewSession{}).Error; err != nil {
		return err
	}
	return nil
}
