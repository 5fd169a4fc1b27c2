// Package service implements raising and resolving project red flags.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activityModel "github.com/festy23/stagegate/internal/activity/model"
	activityRepository "github.com/festy23/stagegate/internal/activity/repository"
	"github.com/festy23/stagegate/internal/events"
	"github.com/festy23/stagegate/internal/identity"
	notificationModel "github.com/festy23/stagegate/internal/notification/model"
	projectModel "github.com/festy23/stagegate/internal/project/model"
	projectRepository "github.com/festy23/stagegate/internal/project/repository"
	"github.com/festy23/stagegate/internal/redflag/model"
	"github.com/festy23/stagegate/internal/redflag/repository"
)

const maxTitleLength = 255

// Service defines the interface for red flag business logic.
type Service interface {
	// Raise records a red flag and puts the project into RED_FLAG status.
	Raise(
		ctx context.Context,
		principal identity.Principal,
		projectID string,
		req *model.RaiseRequest,
	) (*model.RedFlag, error)

	// Resolve closes a red flag. Resolving the last open flag returns the
	// project to the status it had before it was flagged.
	Resolve(ctx context.Context, principal identity.Principal, flagID string) (*model.RedFlag, error)

	// ListForProject returns a project's red flags, newest first.
	ListForProject(ctx context.Context, projectID string) ([]model.RedFlag, error)
}

type service struct {
	repo      repository.Repository
	db        *gorm.DB
	publisher events.Publisher
	logger    *zap.SugaredLogger
}

// New creates a new red flag service instance.
func New(repo repository.Repository, db *gorm.DB, publisher events.Publisher, logger *zap.SugaredLogger) Service {
	return &service{repo: repo, db: db, publisher: publisher, logger: logger}
}

// Raise records a red flag.
func (s *service) Raise(
	ctx context.Context,
	principal identity.Principal,
	projectID string,
	req *model.RaiseRequest,
) (*model.RedFlag, error) {
	s.logger.Debugw("Raise called", "project_id", projectID, "actor", principal.UserID)

	title := strings.TrimSpace(req.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return nil, model.ErrInvalidTitle
	}
	severity, ok := model.ParseSeverity(strings.ToUpper(strings.TrimSpace(req.Severity)))
	if !ok {
		return nil, model.ErrInvalidSeverity
	}

	var (
		flag    *model.RedFlag
		project *projectModel.Project
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := projectRepository.New(tx, s.logger)

		var err error
		project, err = projects.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if project.Status.IsClosed() {
			return model.ErrProjectClosed
		}

		if !identity.HasRole(principal, identity.GateAuthorities...) {
			participant, err := projects.IsParticipant(ctx, projectID, principal.UserID)
			if err != nil {
				return err
			}
			if !participant {
				return model.ErrNotProjectParticipant
			}
		}

		flag = &model.RedFlag{
			ID:          uuid.NewString(),
			ProjectID:   projectID,
			RaisedBy:    principal.UserID,
			Title:       title,
			Description: strings.TrimSpace(req.Description),
			Severity:    severity,
			Status:      model.StatusOpen,
			CreatedAt:   time.Now().UTC(),
		}
		if err := repository.New(tx, s.logger).Create(ctx, flag); err != nil {
			return err
		}

		if _, err := projects.Flag(ctx, projectID); err != nil {
			return err
		}

		_, err = activityRepository.New(tx, s.logger).Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: projectID,
			Action:    activityModel.ActionRedFlagRaised,
			Details: map[string]any{
				"red_flag_id":     flag.ID,
				"title":           title,
				"severity":        severity,
				"previous_status": project.Status,
			},
		})
		return err
	})
	if err != nil {
		s.logger.Debugw("Raise failed", "project_id", projectID, "error", err)
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:       notificationModel.TypeRedFlag,
		ActorID:    principal.UserID,
		ProjectID:  projectID,
		Recipients: []string{project.LeadID},
		Title:      fmt.Sprintf("Red flag on %s: %s", project.Code, title),
		Message:    fmt.Sprintf("A %s severity red flag was raised on %s.", strings.ToLower(string(severity)), project.Name),
		Data:       map[string]any{"project_id": projectID, "red_flag_id": flag.ID, "severity": severity},
	})

	s.logger.Infow("Raise completed", "project_id", projectID, "red_flag_id", flag.ID, "severity", severity)
	return flag, nil
}

// Resolve closes a red flag.
func (s *service) Resolve(ctx context.Context, principal identity.Principal, flagID string) (*model.RedFlag, error) {
	s.logger.Debugw("Resolve called", "red_flag_id", flagID, "actor", principal.UserID)

	if !identity.HasRole(principal, identity.GateAuthorities...) {
		return nil, model.ErrResolveForbidden
	}

	var (
		flag     *model.RedFlag
		project  *projectModel.Project
		cleared  bool
		restored projectModel.Status
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flags := repository.New(tx, s.logger)
		projects := projectRepository.New(tx, s.logger)

		current, err := flags.GetForUpdate(ctx, flagID)
		if err != nil {
			return err
		}
		project, err = projects.GetForUpdate(ctx, current.ProjectID)
		if err != nil {
			return err
		}

		resolved, err := flags.Resolve(ctx, flagID, principal.UserID)
		if err != nil {
			return err
		}
		if !resolved {
			return model.ErrAlreadyResolved
		}

		open, err := flags.CountOpen(ctx, current.ProjectID)
		if err != nil {
			return err
		}
		if open == 0 {
			restored, cleared, err = projects.Unflag(ctx, current.ProjectID)
			if err != nil {
				return err
			}
		}

		details := map[string]any{
			"red_flag_id":     flagID,
			"remaining_open":  open,
			"project_cleared": cleared,
		}
		if cleared {
			details["restored_status"] = restored
		}
		_, err = activityRepository.New(tx, s.logger).Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: current.ProjectID,
			Action:    activityModel.ActionRedFlagResolved,
			Details:   details,
		})
		if err != nil {
			return err
		}

		flag, err = flags.GetForUpdate(ctx, flagID)
		return err
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Red flag %q was resolved.", flag.Title)
	if cleared {
		message += fmt.Sprintf(" The project is %s again.", restored)
	}
	s.publisher.Publish(ctx, events.Event{
		Type:       notificationModel.TypeRedFlag,
		ActorID:    principal.UserID,
		ProjectID:  project.ID,
		Recipients: []string{project.LeadID},
		Title:      fmt.Sprintf("Red flag resolved on %s", project.Code),
		Message:    message,
		Data:       map[string]any{"project_id": project.ID, "red_flag_id": flagID, "project_cleared": cleared},
	})

	s.logger.Infow("Resolve completed", "red_flag_id", flagID, "project_cleared", cleared, "restored_status", restored)
	return flag, nil
}

// ListForProject returns a project's red flags.
func (s *service) ListForProject(ctx context.Context, projectID string) ([]model.RedFlag, error) {
	if _, err := projectRepository.New(s.db, s.logger).GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, projectID)
}
