// Package repository provides data access layer for project module.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/stagegate/internal/database/dberr"
	"github.com/festy23/stagegate/internal/project/model"
)

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Stage   model.Stage
	Status  model.Status
	Cluster string
}

// Repository defines the interface for project data access operations.
type Repository interface {
	// Create allocates the next project code and inserts the project.
	// A concurrent allocation surfaces as a unique violation; callers retry.
	Create(ctx context.Context, project *model.Project) (*model.Project, error)

	// GetByID finds a project by id.
	GetByID(ctx context.Context, projectID string) (*model.Project, error)

	// GetForUpdate finds a project by id and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, projectID string) (*model.Project, error)

	// List returns projects matching filter ordered by code.
	List(ctx context.Context, filter Filter) ([]model.Project, error)

	// Update writes the given columns. It never writes stage.
	Update(ctx context.Context, projectID string, fields map[string]any) (*model.Project, error)

	// AddMember inserts a membership row.
	AddMember(ctx context.Context, projectID, userID string) (*model.ProjectMember, error)

	// ListMemberIDs returns member user ids ordered by join time.
	ListMemberIDs(ctx context.Context, projectID string) ([]string, error)

	// IsParticipant reports whether userID leads or belongs to the project.
	IsParticipant(ctx context.Context, projectID, userID string) (bool, error)

	// ApplyTransition moves the project from one stage to another and sets
	// its status. It is the only writer of stage. While the project is
	// RED_FLAG a non-terminal status becomes the resume status instead.
	ApplyTransition(
		ctx context.Context,
		projectID string,
		from, to model.Stage,
		status model.Status,
	) (*model.Project, error)

	// SetStatus sets status when the current status is one of from.
	// While the project is RED_FLAG it rewrites the resume status instead.
	// It reports whether a row changed.
	SetStatus(ctx context.Context, projectID string, from []model.Status, to model.Status) (bool, error)

	// Flag moves an open project to RED_FLAG and remembers its status.
	// It reports false when the project is closed or already flagged.
	Flag(ctx context.Context, projectID string) (bool, error)

	// Unflag restores the remembered status of a RED_FLAG project.
	// It returns the restored status and false when the project was not flagged.
	Unflag(ctx context.Context, projectID string) (model.Status, bool, error)

	// Delete removes the memberships and the project row.
	Delete(ctx context.Context, projectID string) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new project repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// Create allocates the next project code and inserts the project.
func (r *repository) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	r.logger.Debugw("Create called", "project_id", project.ID, "name", project.Name)

	var maxSeq int
	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Select("COALESCE(MAX(code_seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		r.logger.Errorw("Create code allocation failed", "error", err)
		return nil, err
	}

	now := time.Now().UTC()
	project.CodeSeq = maxSeq + 1
	project.Code = model.FormatCode(project.CodeSeq)
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			r.logger.Debugw("Create code collision", "code", project.Code)
			return nil, dberr.Map(err)
		}
		r.logger.Errorw("Create database error", "project_id", project.ID, "error", err)
		return nil, err
	}

	r.logger.Infow("Create completed", "project_id", project.ID, "code", project.Code)
	return project, nil
}

// GetByID finds a project by id.
func (r *repository) GetByID(ctx context.Context, projectID string) (*model.Project, error) {
	return r.get(r.db.WithContext(ctx), projectID)
}

// GetForUpdate finds a project by id and locks its row.
func (r *repository) GetForUpdate(ctx context.Context, projectID string) (*model.Project, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), projectID)
}

func (r *repository) get(db *gorm.DB, projectID string) (*model.Project, error) {
	var project model.Project
	err := db.Where("id = ?", projectID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProjectNotFound
		}
		r.logger.Errorw("get project database error", "project_id", projectID, "error", err)
		return nil, err
	}
	return &project, nil
}

// List returns projects matching filter ordered by code.
func (r *repository) List(ctx context.Context, filter Filter) ([]model.Project, error) {
	query := r.db.WithContext(ctx).Model(&model.Project{})
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Cluster != "" {
		query = query.Where("cluster = ?", filter.Cluster)
	}

	var projects []model.Project
	if err := query.Order("code_seq ASC").Find(&projects).Error; err != nil {
		r.logger.Errorw("List database error", "error", err)
		return nil, err
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// Update writes the given columns.
func (r *repository) Update(ctx context.Context, projectID string, fields map[string]any) (*model.Project, error) {
	delete(fields, "stage")
	fields["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", projectID).
		Updates(fields)
	if result.Error != nil {
		r.logger.Errorw("Update database error", "project_id", projectID, "error", result.Error)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, model.ErrProjectNotFound
	}
	return r.GetByID(ctx, projectID)
}

// AddMember inserts a membership row.
func (r *repository) AddMember(ctx context.Context, projectID, userID string) (*model.ProjectMember, error) {
	member := &model.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		AddedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, model.ErrMemberExists
		}
		r.logger.Errorw("AddMember database error", "project_id", projectID, "user_id", userID, "error", err)
		return nil, err
	}
	return member, nil
}

// ListMemberIDs returns member user ids ordered by join time.
func (r *repository) ListMemberIDs(ctx context.Context, projectID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.ProjectMember{}).
		Where("project_id = ?", projectID).
		Order("added_at ASC").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		r.logger.Errorw("ListMemberIDs database error", "project_id", projectID, "error", err)
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// IsParticipant reports whether userID leads or belongs to the project.
func (r *repository) IsParticipant(ctx context.Context, projectID, userID string) (bool, error) {
	var leads int64
	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND lead_id = ?", projectID, userID).
		Count(&leads).Error
	if err != nil {
		return false, err
	}
	if leads > 0 {
		return true, nil
	}

	var members int64
	err = r.db.WithContext(ctx).
		Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&members).Error
	if err != nil {
		return false, err
	}
	return members > 0, nil
}

// ApplyTransition moves the project between stages and sets its status.
func (r *repository) ApplyTransition(
	ctx context.Context,
	projectID string,
	from, to model.Stage,
	status model.Status,
) (*model.Project, error) {
	r.logger.Debugw("ApplyTransition called",
		"project_id", projectID, "from", from, "to", to, "status", status)

	if !from.Valid() || !to.Valid() {
		return nil, model.ErrInvalidStage
	}
	if to.Index() < from.Index() {
		return nil, model.ErrStageRegression
	}

	current, err := r.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"stage":      to,
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if current.Status == model.StatusRedFlag && !status.IsClosed() {
		fields["status"] = model.StatusRedFlag
		fields["resume_status"] = status
	} else {
		fields["resume_status"] = nil
	}

	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND stage = ? AND status = ?", projectID, from, current.Status).
		Updates(fields)
	if result.Error != nil {
		r.logger.Errorw("ApplyTransition database error", "project_id", projectID, "error", result.Error)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, model.ErrStageChanged
	}

	return r.GetByID(ctx, projectID)
}

// SetStatus sets status when the current status is one of from.
func (r *repository) SetStatus(
	ctx context.Context,
	projectID string,
	from []model.Status,
	to model.Status,
) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND status IN ?", projectID, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": now,
		})
	if result.Error != nil {
		r.logger.Errorw("SetStatus database error", "project_id", projectID, "error", result.Error)
		return false, result.Error
	}
	if result.RowsAffected > 0 || to == model.StatusRedFlag {
		return result.RowsAffected > 0, nil
	}

	// A flagged project keeps RED_FLAG; the change lands once it is unflagged.
	result = r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND status = ? AND resume_status IN ?", projectID, model.StatusRedFlag, from).
		Updates(map[string]any{
			"resume_status": to,
			"updated_at":    now,
		})
	if result.Error != nil {
		r.logger.Errorw("SetStatus database error", "project_id", projectID, "error", result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Flag moves an open project to RED_FLAG.
func (r *repository) Flag(ctx context.Context, projectID string) (bool, error) {
	current, err := r.GetByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	if current.Status == model.StatusRedFlag || current.Status.IsClosed() {
		return false, nil
	}

	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND status = ?", projectID, current.Status).
		Updates(map[string]any{
			"status":        model.StatusRedFlag,
			"resume_status": current.Status,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("Flag database error", "project_id", projectID, "error", result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Unflag restores the status a RED_FLAG project had before it was flagged.
func (r *repository) Unflag(ctx context.Context, projectID string) (model.Status, bool, error) {
	current, err := r.GetByID(ctx, projectID)
	if err != nil {
		return "", false, err
	}
	if current.Status != model.StatusRedFlag {
		return current.Status, false, nil
	}

	target := model.StatusActive
	if current.ResumeStatus != nil {
		if st, ok := model.ParseStatus(string(*current.ResumeStatus)); ok && st != model.StatusRedFlag {
			target = st
		}
	}

	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND status = ?", projectID, model.StatusRedFlag).
		Updates(map[string]any{
			"status":        target,
			"resume_status": nil,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("Unflag database error", "project_id", projectID, "error", result.Error)
		return "", false, result.Error
	}
	if result.RowsAffected == 0 {
		return current.Status, false, nil
	}
	return target, true, nil
}

// Delete removes the memberships and the project row.
func (r *repository) Delete(ctx context.Context, projectID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&model.ProjectMember{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", projectID).Delete(&model.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrProjectNotFound
	}
	return nil
}
