// Package service provides business logic layer for project module.
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activityModel "github.com/festy23/stagegate/internal/activity/model"
	activityRepository "github.com/festy23/stagegate/internal/activity/repository"
	"github.com/festy23/stagegate/internal/database/dberr"
	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/project/model"
	"github.com/festy23/stagegate/internal/project/repository"
	redflagRepository "github.com/festy23/stagegate/internal/redflag/repository"
	reviewRepository "github.com/festy23/stagegate/internal/review/repository"
	userRepository "github.com/festy23/stagegate/internal/user/repository"
	"github.com/festy23/stagegate/pkg/retry"
)

const maxNameLength = 255

// Service defines the interface for project business logic operations.
type Service interface {
	// CreateProject creates a project at STAGE_0 led by the principal unless
	// another lead is named.
	CreateProject(
		ctx context.Context,
		principal identity.Principal,
		req *model.CreateProjectRequest,
	) (*model.ProjectResponse, error)

	// GetProject returns a project with its members.
	GetProject(ctx context.Context, projectID string) (*model.ProjectResponse, error)

	// ListProjects returns projects matching filter.
	ListProjects(ctx context.Context, filter *model.ListFilter) ([]model.Project, error)

	// UpdateProject edits descriptive attributes. Lead or admin only.
	UpdateProject(
		ctx context.Context,
		principal identity.Principal,
		projectID string,
		req *model.UpdateProjectRequest,
	) (*model.ProjectResponse, error)

	// AddMember adds a directory user to the project. Lead, admin or gatekeeper.
	AddMember(
		ctx context.Context,
		principal identity.Principal,
		projectID string,
		req *model.AddMemberRequest,
	) (*model.ProjectResponse, error)

	// DeleteProject removes a project and everything attached to it except
	// its audit history. Admin only.
	DeleteProject(ctx context.Context, principal identity.Principal, projectID string) error
}

type service struct {
	repo   repository.Repository
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new project service instance.
func New(repo repository.Repository, db *gorm.DB, logger *zap.SugaredLogger) Service {
	return &service{repo: repo, db: db, logger: logger}
}

func retryable(err error) bool {
	return dberr.IsUniqueViolation(err) || dberr.IsSerialization(err)
}

// CreateProject creates a project.
func (s *service) CreateProject(
	ctx context.Context,
	principal identity.Principal,
	req *model.CreateProjectRequest,
) (*model.ProjectResponse, error) {
	s.logger.Debugw("CreateProject called", "name", req.Name, "actor", principal.UserID)

	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := validateNumbers(req.BudgetAmount, req.BudgetUtilization, req.DurationMonths); err != nil {
		return nil, err
	}
	leadID := strings.TrimSpace(req.LeadID)
	if leadID == "" {
		leadID = principal.UserID
	}

	project, err := retry.DoWithResult(ctx, retry.TransactionConfig(retryable), func() (*model.Project, error) {
		var created *model.Project
		txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			users := userRepository.New(tx, s.logger)
			active, err := users.FindActive(ctx, []string{leadID})
			if err != nil {
				return err
			}
			if len(active) == 0 {
				return model.ErrUnknownLead
			}

			created, err = repository.New(tx, s.logger).Create(ctx, &model.Project{
				ID:                uuid.NewString(),
				Name:              name,
				Description:       strings.TrimSpace(req.Description),
				BusinessCase:      strings.TrimSpace(req.BusinessCase),
				BudgetAmount:      req.BudgetAmount,
				BudgetUtilization: req.BudgetUtilization,
				DurationMonths:    req.DurationMonths,
				Stage:             model.Stage0,
				Status:            model.StatusActive,
				LeadID:            leadID,
				Cluster:           strings.TrimSpace(req.Cluster),
			})
			if err != nil {
				return err
			}

			_, err = activityRepository.New(tx, s.logger).Record(ctx, activityModel.Entry{
				UserID:    principal.UserID,
				ProjectID: created.ID,
				Action:    activityModel.ActionProjectCreated,
				Details:   map[string]any{"code": created.Code, "name": created.Name, "lead_id": leadID},
			})
			return err
		})
		return created, txErr
	})
	if err != nil {
		if errors.Is(err, dberr.ErrUniqueViolation) {
			s.logger.Warnw("CreateProject code allocation exhausted", "error", err)
			return nil, model.ErrCodeExhausted
		}
		return nil, err
	}

	s.logger.Infow("CreateProject completed", "project_id", project.ID, "code", project.Code, "lead_id", leadID)
	return &model.ProjectResponse{Project: *project, Members: []string{}}, nil
}

// GetProject returns a project with its members.
func (s *service) GetProject(ctx context.Context, projectID string) (*model.ProjectResponse, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.withMembers(ctx, s.repo, project)
}

// ListProjects returns projects matching filter.
func (s *service) ListProjects(ctx context.Context, filter *model.ListFilter) ([]model.Project, error) {
	var f repository.Filter
	if filter != nil {
		if filter.Stage != "" {
			stage, ok := model.ParseStage(strings.ToUpper(filter.Stage))
			if !ok {
				return nil, model.ErrInvalidStage
			}
			f.Stage = stage
		}
		if filter.Status != "" {
			status, ok := model.ParseStatus(strings.ToUpper(filter.Status))
			if !ok {
				return nil, model.ErrInvalidStatus
			}
			f.Status = status
		}
		f.Cluster = strings.TrimSpace(filter.Cluster)
	}
	return s.repo.List(ctx, f)
}

// UpdateProject edits descriptive attributes.
func (s *service) UpdateProject(
	ctx context.Context,
	principal identity.Principal,
	projectID string,
	req *model.UpdateProjectRequest,
) (*model.ProjectResponse, error) {
	s.logger.Debugw("UpdateProject called", "project_id", projectID, "actor", principal.UserID)

	var result *model.ProjectResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx, s.logger)

		current, err := txRepo.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if current.LeadID != principal.UserID && !identity.HasRole(principal, identity.RoleAdmin) {
			return model.ErrNotProjectEditor
		}

		fields, err := updateFields(current, req)
		if err != nil {
			return err
		}

		updated := current
		if len(fields) > 0 {
			changed := make([]string, 0, len(fields))
			for k := range fields {
				changed = append(changed, k)
			}
			sort.Strings(changed)

			updated, err = txRepo.Update(ctx, projectID, fields)
			if err != nil {
				return err
			}

			_, err = activityRepository.New(tx, s.logger).Record(ctx, activityModel.Entry{
				UserID:    principal.UserID,
				ProjectID: projectID,
				Action:    activityModel.ActionProjectUpdated,
				Details:   map[string]any{"fields": changed},
			})
			if err != nil {
				return err
			}
		}

		result, err = s.withMembers(ctx, txRepo, updated)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("UpdateProject completed", "project_id", projectID)
	return result, nil
}

// AddMember adds a directory user to the project.
func (s *service) AddMember(
	ctx context.Context,
	principal identity.Principal,
	projectID string,
	req *model.AddMemberRequest,
) (*model.ProjectResponse, error) {
	s.logger.Debugw("AddMember called", "project_id", projectID, "user_id", req.UserID, "actor", principal.UserID)

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, model.ErrInvalidUserID
	}

	var result *model.ProjectResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx, s.logger)

		project, err := txRepo.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if project.LeadID != principal.UserID &&
			!identity.HasRole(principal, identity.GateAuthorities...) {
			return model.ErrNotMemberManager
		}
		if project.LeadID == userID {
			return model.ErrMemberExists
		}

		active, err := userRepository.New(tx, s.logger).FindActive(ctx, []string{userID})
		if err != nil {
			return err
		}
		if len(active) == 0 {
			return model.ErrUnknownMember
		}

		if _, err := txRepo.AddMember(ctx, projectID, userID); err != nil {
			return err
		}

		_, err = activityRepository.New(tx, s.logger).Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: projectID,
			Action:    activityModel.ActionMemberAdded,
			Details:   map[string]any{"user_id": userID},
		})
		if err != nil {
			return err
		}

		result, err = s.withMembers(ctx, txRepo, project)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("AddMember completed", "project_id", projectID, "user_id", userID)
	return result, nil
}

// DeleteProject removes a project and everything attached to it.
func (s *service) DeleteProject(ctx context.Context, principal identity.Principal, projectID string) error {
	s.logger.Debugw("DeleteProject called", "project_id", projectID, "actor", principal.UserID)

	if !identity.HasRole(principal, identity.RoleAdmin) {
		return model.ErrDeleteForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx, s.logger)

		project, err := txRepo.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}

		if err := reviewRepository.New(tx, s.logger).DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if err := redflagRepository.New(tx, s.logger).DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, projectID); err != nil {
			return err
		}

		_, err = activityRepository.New(tx, s.logger).Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: projectID,
			Action:    activityModel.ActionProjectDeleted,
			Details:   map[string]any{"code": project.Code, "name": project.Name},
		})
		return err
	})
	if err != nil {
		s.logger.Errorw("DeleteProject failed", "project_id", projectID, "error", err)
		return err
	}

	s.logger.Infow("DeleteProject completed", "project_id", projectID)
	return nil
}

func (s *service) withMembers(
	ctx context.Context,
	repo repository.Repository,
	project *model.Project,
) (*model.ProjectResponse, error) {
	members, err := repo.ListMemberIDs(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	return &model.ProjectResponse{Project: *project, Members: members}, nil
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", model.ErrInvalidProjectName
	}
	return name, nil
}

func validateNumbers(budget, utilization float64, duration int) error {
	if budget < 0 || utilization < 0 || utilization > 100 {
		return model.ErrInvalidBudget
	}
	if duration < 0 {
		return model.ErrInvalidDuration
	}
	return nil
}

// updateFields validates req against current and returns the columns to write.
func updateFields(current *model.Project, req *model.UpdateProjectRequest) (map[string]any, error) {
	fields := map[string]any{}

	if req.Name != nil {
		name, err := validateName(*req.Name)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.BusinessCase != nil {
		fields["business_case"] = strings.TrimSpace(*req.BusinessCase)
	}
	if req.Cluster != nil {
		fields["cluster"] = strings.TrimSpace(*req.Cluster)
	}

	budget, utilization, duration := current.BudgetAmount, current.BudgetUtilization, current.DurationMonths
	if req.BudgetAmount != nil {
		budget = *req.BudgetAmount
		fields["budget_amount"] = budget
	}
	if req.BudgetUtilization != nil {
		utilization = *req.BudgetUtilization
		fields["budget_utilization"] = utilization
	}
	if req.DurationMonths != nil {
		duration = *req.DurationMonths
		fields["duration_months"] = duration
	}
	if err := validateNumbers(budget, utilization, duration); err != nil {
		return nil, err
	}

	return fields, nil
}
