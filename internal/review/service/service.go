// Package service implements the gate review workflow: opening review
// sessions, collecting reviews, and approving or closing sessions.
//
// Every mutating operation runs in one transaction that starts by locking
// the session (or project) row. Notifications are published only after the
// transaction commits.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activityModel "github.com/festy23/stagegate/internal/activity/model"
	activityRepository "github.com/festy23/stagegate/internal/activity/repository"
	"github.com/festy23/stagegate/internal/apperr"
	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/internal/events"
	"github.com/festy23/stagegate/internal/identity"
	notificationModel "github.com/festy23/stagegate/internal/notification/model"
	projectModel "github.com/festy23/stagegate/internal/project/model"
	projectRepository "github.com/festy23/stagegate/internal/project/repository"
	"github.com/festy23/stagegate/internal/review/model"
	"github.com/festy23/stagegate/internal/review/policy"
	"github.com/festy23/stagegate/internal/review/repository"
	"github.com/festy23/stagegate/internal/transition"
	userRepository "github.com/festy23/stagegate/internal/user/repository"
)

// Service defines the interface for the gate review workflow.
type Service interface {
	// AssignReviewers opens a review session for the project's current stage.
	AssignReviewers(
		ctx context.Context,
		principal identity.Principal,
		req *model.AssignReviewersRequest,
	) (*model.SessionResponse, error)

	// GetAssignment returns the assignment of a reviewer in a session.
	GetAssignment(ctx context.Context, sessionID, reviewerID string) (*model.ReviewAssignment, error)

	// AddReviewer adds one reviewer to a session that is still collecting reviews.
	AddReviewer(
		ctx context.Context,
		principal identity.Principal,
		sessionID string,
		req *model.AddReviewerRequest,
	) (*model.SessionResponse, error)

	// StartAssignment marks the principal's assignment as in progress.
	StartAssignment(ctx context.Context, principal identity.Principal, sessionID string) (*model.ReviewAssignment, error)

	// SubmitReview records the principal's review in a session.
	SubmitReview(
		ctx context.Context,
		principal identity.Principal,
		req *model.SubmitReviewRequest,
	) (*model.GateReview, error)

	// UpdateReview revises a submitted review while the session is open.
	UpdateReview(
		ctx context.Context,
		principal identity.Principal,
		reviewID string,
		req *model.UpdateReviewRequest,
	) (*model.GateReview, error)

	// RecordProjectReview submits a review to the open session of a project stage.
	RecordProjectReview(
		ctx context.Context,
		principal identity.Principal,
		projectID string,
		req *model.ProjectReviewRequest,
	) (*model.GateReview, error)

	// ListProjectReviews returns every gate review of a project.
	ListProjectReviews(ctx context.Context, projectID string) ([]model.GateReview, error)

	// ApproveSession records the gate outcome of a completed session and
	// moves the project accordingly. Approving twice is a no-op.
	ApproveSession(
		ctx context.Context,
		principal identity.Principal,
		sessionID string,
		outcome string,
	) (*model.ApproveResult, error)

	// CloseSession abandons a session without an outcome.
	CloseSession(
		ctx context.Context,
		principal identity.Principal,
		sessionID string,
		reason string,
	) (*model.SessionResponse, error)

	// GetSession returns a session with its assignments, reviews and summary.
	GetSession(ctx context.Context, sessionID string) (*model.SessionResponse, error)

	// ListProjectSessions returns a project's sessions, oldest first.
	ListProjectSessions(ctx context.Context, projectID string) ([]model.ReviewSession, error)

	// ListReviewerAssignments returns a reviewer's workload.
	ListReviewerAssignments(ctx context.Context, reviewerID string) ([]model.ReviewerAssignment, error)
}

type service struct {
	repo       repository.Repository
	db         *gorm.DB
	rules      config.GateConfig
	controller *transition.Controller
	publisher  events.Publisher
	logger     *zap.SugaredLogger
}

// New creates a new review service instance.
func New(
	repo repository.Repository,
	db *gorm.DB,
	rules config.GateConfig,
	publisher events.Publisher,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:       repo,
		db:         db,
		rules:      rules,
		controller: transition.NewController(rules, logger),
		publisher:  publisher,
		logger:     logger,
	}
}

// txScope bundles the repositories bound to one transaction.
type txScope struct {
	reviews    repository.Repository
	projects   projectRepository.Repository
	activities activityRepository.Repository
	users      userRepository.Repository
}

func (s *service) scope(tx *gorm.DB) txScope {
	return txScope{
		reviews:    repository.New(tx, s.logger),
		projects:   projectRepository.New(tx, s.logger),
		activities: activityRepository.New(tx, s.logger),
		users:      userRepository.New(tx, s.logger),
	}
}

func isGateAuthority(p identity.Principal) bool {
	return identity.HasRole(p, identity.GateAuthorities...)
}

func parseStage(raw string) (projectModel.Stage, error) {
	stage, ok := projectModel.ParseStage(strings.ToUpper(strings.TrimSpace(raw)))
	if !ok {
		return "", model.ErrInvalidStage
	}
	return stage, nil
}

// normalizeReviewers trims ids and rejects empty, blank and duplicate entries.
func normalizeReviewers(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, model.ErrNoReviewers
	}
	ids := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, model.ErrBlankReviewer
		}
		if _, dup := seen[id]; dup {
			return nil, model.ErrDuplicateReviewers
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// requireActive fails unless every id is an active directory user.
func requireActive(ctx context.Context, users userRepository.Repository, ids []string) error {
	active, err := users.FindActive(ctx, ids)
	if err != nil {
		return err
	}
	if len(active) == len(ids) {
		return nil
	}
	found := make(map[string]struct{}, len(active))
	for _, u := range active {
		found[u.UserID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return apperr.Wrap(model.ErrUnknownReviewer, strings.Join(missing, ", "))
}

func newPlaceholders(session *model.ReviewSession, reviewerIDs []string, now time.Time) (
	[]model.ReviewAssignment,
	[]model.GateReview,
) {
	assignments := make([]model.ReviewAssignment, 0, len(reviewerIDs))
	reviews := make([]model.GateReview, 0, len(reviewerIDs))
	for _, id := range reviewerIDs {
		assignments = append(assignments, model.ReviewAssignment{
			ID:         uuid.NewString(),
			SessionID:  session.ID,
			ReviewerID: id,
			Status:     model.AssignmentAssigned,
			AssignedAt: now,
		})
		reviews = append(reviews, model.GateReview{
			ID:         uuid.NewString(),
			SessionID:  session.ID,
			ProjectID:  session.ProjectID,
			Stage:      session.Stage,
			ReviewerID: id,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return assignments, reviews
}

// AssignReviewers opens a review session.
func (s *service) AssignReviewers(
	ctx context.Context,
	principal identity.Principal,
	req *model.AssignReviewersRequest,
) (*model.SessionResponse, error) {
	s.logger.Debugw("AssignReviewers called",
		"project_id", req.ProjectID, "stage", req.Stage, "reviewers", len(req.ReviewerIDs), "actor", principal.UserID)

	if !isGateAuthority(principal) {
		return nil, model.ErrGateAuthorityRequired
	}
	// an empty stage targets the project's current stage
	var stage projectModel.Stage
	if strings.TrimSpace(req.Stage) != "" {
		parsed, err := parseStage(req.Stage)
		if err != nil {
			return nil, err
		}
		stage = parsed
	}
	reviewerIDs, err := normalizeReviewers(req.ReviewerIDs)
	if err != nil {
		return nil, err
	}
	projectID := strings.TrimSpace(req.ProjectID)

	var (
		result  *model.SessionResponse
		project *projectModel.Project
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc := s.scope(tx)

		var err error
		project, err = sc.projects.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if project.Status.IsClosed() {
			return model.ErrProjectClosed
		}
		if stage == "" {
			stage = project.Stage
		}
		if project.Stage != stage {
			return model.ErrStageMismatch
		}
		if err := requireActive(ctx, sc.users, reviewerIDs); err != nil {
			return err
		}

		now := time.Now().UTC()
		slot := model.OpenSlot(projectID, stage)
		session := &model.ReviewSession{
			ID:                uuid.NewString(),
			ProjectID:         projectID,
			Stage:             stage,
			Status:            model.SessionPending,
			RequiredReviewers: len(reviewerIDs),
			DueDate:           req.DueDate,
			OpenSlot:          &slot,
			CreatedBy:         principal.UserID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := sc.reviews.CreateSession(ctx, session); err != nil {
			return err
		}

		assignments, reviews := newPlaceholders(session, reviewerIDs, now)
		if err := sc.reviews.CreateAssignments(ctx, assignments); err != nil {
			return err
		}
		if err := sc.reviews.CreateReviews(ctx, reviews); err != nil {
			return err
		}

		_, err = sc.projects.SetStatus(ctx, projectID,
			[]projectModel.Status{projectModel.StatusActive}, projectModel.StatusPendingReview)
		if err != nil {
			return err
		}

		_, err = sc.activities.Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: projectID,
			Action:    activityModel.ActionReviewersAssigned,
			Details: map[string]any{
				"session_id":   session.ID,
				"stage":        stage,
				"reviewer_ids": reviewerIDs,
			},
		})
		if err != nil {
			return err
		}

		result, err = loadSession(ctx, sc.reviews, session.ID)
		return err
	})
	if err != nil {
		s.logger.Debugw("AssignReviewers failed", "project_id", projectID, "error", err)
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:       notificationModel.TypeReviewAssigned,
		ActorID:    principal.UserID,
		ProjectID:  projectID,
		SessionID:  result.ID,
		Recipients: reviewerIDs,
		Title:      fmt.Sprintf("Gate review requested: %s %s", project.Code, stage),
		Message:    fmt.Sprintf("You have been assigned to review %s at %s.", project.Name, stage),
		Data:       map[string]any{"project_id": projectID, "session_id": result.ID, "stage": stage},
	})

	s.logger.Infow("AssignReviewers completed",
		"session_id", result.ID, "project_id", projectID, "stage", stage, "reviewers", len(reviewerIDs))
	return result, nil
}

// GetAssignment returns the assignment of a reviewer in a session.
func (s *service) GetAssignment(ctx context.Context, sessionID, reviewerID string) (*model.ReviewAssignment, error) {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.GetAssignment(ctx, sessionID, reviewerID)
}

// AddReviewer adds one reviewer to a session.
func (s *service) AddReviewer(
	ctx context.Context,
	principal identity.Principal,
	sessionID string,
	req *model.AddReviewerRequest,
) (*model.SessionResponse, error) {
	s.logger.Debugw("AddReviewer called", "session_id", sessionID, "reviewer_id", req.ReviewerID)

	if !isGateAuthority(principal) {
		return nil, model.ErrGateAuthorityRequired
	}
	reviewerID := strings.TrimSpace(req.ReviewerID)
	if reviewerID == "" {
		return nil, model.ErrBlankReviewer
	}

	var result *model.SessionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc := s.scope(tx)

		session, err := sc.reviews.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		switch session.Status {
		case model.SessionApproved:
			return model.ErrSessionApproved
		case model.SessionClosed:
			return model.ErrSessionClosed
		case model.SessionCompleted:
			return model.ErrReviewersLocked
		}
		if err := requireActive(ctx, sc.users, []string{reviewerID}); err != nil {
			return err
		}

		assignments, reviews := newPlaceholders(session, []string{reviewerID}, time.Now().UTC())
		if err := sc.reviews.CreateAssignments(ctx, assignments); err != nil {
			return err
		}
		if err := sc.reviews.CreateReviews(ctx, reviews); err != nil {
			return err
		}

		session.RequiredReviewers++
		if _, err := recompute(ctx, sc.reviews, session); err != nil {
			return err
		}

		_, err = sc.activities.Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: session.ProjectID,
			Action:    activityModel.ActionReviewerAdded,
			Details:   map[string]any{"session_id": sessionID, "reviewer_id": reviewerID},
		})
		if err != nil {
			return err
		}

		result, err = loadSession(ctx, sc.reviews, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:       notificationModel.TypeReviewAssigned,
		ActorID:    principal.UserID,
		ProjectID:  result.ProjectID,
		SessionID:  sessionID,
		Recipients: []string{reviewerID},
		Title:      fmt.Sprintf("Gate review requested: %s", result.Stage),
		Message:    "You have been added as a reviewer.",
		Data:       map[string]any{"project_id": result.ProjectID, "session_id": sessionID, "stage": result.Stage},
	})

	s.logger.Infow("AddReviewer completed", "session_id", sessionID, "reviewer_id", reviewerID)
	return result, nil
}

// StartAssignment marks the principal's assignment as in progress.
func (s *service) StartAssignment(
	ctx context.Context,
	principal identity.Principal,
	sessionID string,
) (*model.ReviewAssignment, error) {
	var result *model.ReviewAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := repository.New(tx, s.logger)

		session, err := reviews.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := ensureOpen(session); err != nil {
			return err
		}

		assignment, err := reviews.GetAssignment(ctx, sessionID, principal.UserID)
		if err != nil {
			if errors.Is(err, model.ErrAssignmentNotFound) {
				return model.ErrNotAssigned
			}
			return err
		}
		switch assignment.Status {
		case model.AssignmentCompleted:
			return model.ErrAssignmentCompleted
		case model.AssignmentInProgress:
			result = assignment
			return nil
		}

		if _, err := reviews.SetAssignmentStatus(ctx, sessionID, principal.UserID,
			[]model.AssignmentStatus{model.AssignmentAssigned}, model.AssignmentInProgress); err != nil {
			return err
		}
		result, err = reviews.GetAssignment(ctx, sessionID, principal.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ensureOpen rejects reviews on approved or closed sessions.
func ensureOpen(session *model.ReviewSession) error {
	switch session.Status {
	case model.SessionApproved:
		return model.ErrSessionApproved
	case model.SessionClosed:
		return model.ErrSessionClosed
	}
	return nil
}

// SubmitReview records the principal's review in a session.
func (s *service) SubmitReview(
	ctx context.Context,
	principal identity.Principal,
	req *model.SubmitReviewRequest,
) (*model.GateReview, error) {
	s.logger.Debugw("SubmitReview called", "session_id", req.SessionID, "reviewer_id", principal.UserID)

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, model.ErrInvalidSessionID
	}
	sub, err := policy.ValidateSubmission(s.rules, req.Score, req.Decision, req.Comments)
	if err != nil {
		return nil, err
	}

	var (
		review  *model.GateReview
		session *model.ReviewSession
		project *projectModel.Project
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc := s.scope(tx)

		var err error
		session, err = sc.reviews.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := ensureOpen(session); err != nil {
			return err
		}

		if _, err := sc.reviews.GetAssignment(ctx, sessionID, principal.UserID); err != nil {
			if errors.Is(err, model.ErrAssignmentNotFound) {
				return model.ErrNotAssigned
			}
			return err
		}
		current, err := sc.reviews.GetSessionReview(ctx, sessionID, principal.UserID)
		if err != nil {
			if errors.Is(err, model.ErrReviewNotFound) {
				return model.ErrNotAssigned
			}
			return err
		}
		if current.IsCompleted {
			return model.ErrAlreadySubmitted
		}

		ok, err := sc.reviews.WriteReview(ctx, current.ID, false, map[string]any{
			"score":       sub.Score,
			"decision":    sub.Decision,
			"comments":    sub.Comments,
			"review_date": time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrAlreadySubmitted
		}

		if _, err := sc.reviews.SetAssignmentStatus(ctx, sessionID, principal.UserID,
			[]model.AssignmentStatus{model.AssignmentAssigned, model.AssignmentInProgress},
			model.AssignmentCompleted); err != nil {
			return err
		}

		session, err = recompute(ctx, sc.reviews, session)
		if err != nil {
			return err
		}

		_, err = sc.activities.Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: session.ProjectID,
			Action:    activityModel.ActionGateReviewSubmitted,
			Details: map[string]any{
				"session_id": sessionID,
				"review_id":  current.ID,
				"decision":   sub.Decision,
				"score":      sub.Score,
			},
		})
		if err != nil {
			return err
		}

		project, err = sc.projects.GetByID(ctx, session.ProjectID)
		if err != nil {
			return err
		}

		review, err = sc.reviews.GetReview(ctx, current.ID)
		return err
	})
	if err != nil {
		s.logger.Debugw("SubmitReview failed", "session_id", sessionID, "reviewer_id", principal.UserID, "error", err)
		return nil, err
	}

	if s.rules.NotifyLeadOnSubmit {
		s.publisher.Publish(ctx, submittedEvent(principal, project, session, review))
	}

	s.logger.Infow("SubmitReview completed",
		"session_id", sessionID,
		"reviewer_id", principal.UserID,
		"decision", sub.Decision,
		"session_status", session.Status,
		"completed", session.CompletedReviews,
		"required", session.RequiredReviewers,
	)
	return review, nil
}

func submittedEvent(
	principal identity.Principal,
	project *projectModel.Project,
	session *model.ReviewSession,
	review *model.GateReview,
) events.Event {
	return events.Event{
		Type:       notificationModel.TypeReviewSubmitted,
		ActorID:    principal.UserID,
		ProjectID:  project.ID,
		SessionID:  session.ID,
		Recipients: []string{project.LeadID},
		Title:      fmt.Sprintf("Gate review submitted: %s %s", project.Code, session.Stage),
		Message: fmt.Sprintf("%d of %d reviews are in for %s.",
			session.CompletedReviews, session.RequiredReviewers, project.Name),
		Data: map[string]any{
			"project_id":     project.ID,
			"session_id":     session.ID,
			"review_id":      review.ID,
			"reviewer_id":    review.ReviewerID,
			"session_status": session.Status,
		},
	}
}

// UpdateReview revises a submitted review.
func (s *service) UpdateReview(
	ctx context.Context,
	principal identity.Principal,
	reviewID string,
	req *model.UpdateReviewRequest,
) (*model.GateReview, error) {
	s.logger.Debugw("UpdateReview called", "review_id", reviewID, "reviewer_id", principal.UserID)

	sub, err := policy.ValidateSubmission(s.rules, req.Score, req.Decision, req.Comments)
	if err != nil {
		return nil, err
	}

	var review *model.GateReview
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc := s.scope(tx)

		current, err := sc.reviews.GetReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if current.ReviewerID != principal.UserID {
			return model.ErrNotReviewOwner
		}

		session, err := sc.reviews.GetSessionForUpdate(ctx, current.SessionID)
		if err != nil {
			return err
		}
		if session.Status.IsTerminal() {
			return model.ErrReviewLocked
		}

		ok, err := sc.reviews.WriteReview(ctx, reviewID, true, map[string]any{
			"score":    sub.Score,
			"decision": sub.Decision,
			"comments": sub.Comments,
		})
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrReviewNotSubmitted
		}

		if _, err := recompute(ctx, sc.reviews, session); err != nil {
			return err
		}

		_, err = sc.activities.Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: session.ProjectID,
			Action:    activityModel.ActionGateReviewUpdated,
			Details: map[string]any{
				"session_id": session.ID,
				"review_id":  reviewID,
				"decision":   sub.Decision,
				"score":      sub.Score,
			},
		})
		if err != nil {
			return err
		}

		review, err = sc.reviews.GetReview(ctx, reviewID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("UpdateReview completed", "review_id", reviewID, "decision", sub.Decision)
	return review, nil
}

// RecordProjectReview submits a review to the open session of a project stage.
func (s *service) RecordProjectReview(
	ctx context.Context,
	principal identity.Principal,
	projectID string,
	req *model.ProjectReviewRequest,
) (*model.GateReview, error) {
	stage, err := parseStage(req.Stage)
	if err != nil {
		return nil, err
	}
	if reviewerID := strings.TrimSpace(req.ReviewerID); reviewerID != "" && reviewerID != principal.UserID {
		return nil, model.ErrNotReviewOwner
	}

	session, err := s.repo.FindOpenSession(ctx, projectID, stage)
	if err != nil {
		return nil, err
	}

	return s.SubmitReview(ctx, principal, &model.SubmitReviewRequest{
		SessionID: session.ID,
		Score:     req.Score,
		Decision:  req.Decision,
		Comments:  req.Comments,
	})
}

// ListProjectReviews returns every gate review of a project.
func (s *service) ListProjectReviews(ctx context.Context, projectID string) ([]model.GateReview, error) {
	if _, err := projectRepository.New(s.db, s.logger).GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListProjectReviews(ctx, projectID)
}

// ApproveSession records the gate outcome of a completed session.
func (s *service) ApproveSession(
	ctx context.Context,
	principal identity.Principal,
	sessionID string,
	outcome string,
) (*model.ApproveResult, error) {
	s.logger.Debugw("ApproveSession called", "session_id", sessionID, "outcome", outcome, "actor", principal.UserID)

	if !isGateAuthority(principal) {
		return nil, model.ErrGateAuthorityRequired
	}
	decision, ok := model.ParseDecision(strings.ToUpper(strings.TrimSpace(outcome)))
	if !ok {
		return nil, model.ErrInvalidDecision
	}

	var (
		result  *model.ApproveResult
		pending []events.Event
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc := s.scope(tx)

		session, err := sc.reviews.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}

		switch session.Status {
		case model.SessionApproved:
			project, err := sc.projects.GetByID(ctx, session.ProjectID)
			if err != nil {
				return err
			}
			resp, err := loadSession(ctx, sc.reviews, sessionID)
			if err != nil {
				return err
			}
			result = &model.ApproveResult{
				Session:      resp,
				Applied:      false,
				ProjectStage: string(project.Stage),
				ProjectState: string(project.Status),
			}
			return nil
		case model.SessionClosed:
			return model.ErrSessionClosed
		case model.SessionCompleted:
		default:
			return model.ErrSessionNotCompleted
		}

		project, err := sc.projects.GetForUpdate(ctx, session.ProjectID)
		if err != nil {
			return err
		}
		if project.Stage != session.Stage {
			return model.ErrStageMismatch
		}

		now := time.Now().UTC()
		updated, err := sc.reviews.UpdateSession(ctx, sessionID,
			[]model.SessionStatus{model.SessionCompleted},
			map[string]any{
				"status":      model.SessionApproved,
				"decision":    decision,
				"approved_by": principal.UserID,
				"approved_at": now,
				"open_slot":   nil,
			})
		if err != nil {
			return err
		}
		if !updated {
			return model.ErrSessionNotCompleted
		}

		moved, err := s.controller.Apply(ctx, tx, transition.Input{
			Project:   project,
			SessionID: sessionID,
			Outcome:   decision,
			ActorID:   principal.UserID,
			Details: map[string]any{
				"average_score": session.AverageScore,
				"completed":     session.CompletedReviews,
			},
		})
		if err != nil {
			return err
		}
		pending = moved.Events

		resp, err := loadSession(ctx, sc.reviews, sessionID)
		if err != nil {
			return err
		}
		result = &model.ApproveResult{
			Session:      resp,
			Applied:      true,
			ProjectStage: string(moved.Project.Stage),
			ProjectState: string(moved.Project.Status),
		}
		return nil
	})
	if err != nil {
		s.logger.Debugw("ApproveSession failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	if len(pending) > 0 {
		s.publisher.Publish(ctx, pending...)
	}

	s.logger.Infow("ApproveSession completed",
		"session_id", sessionID,
		"decision", decision,
		"applied", result.Applied,
		"project_stage", result.ProjectStage,
		"project_status", result.ProjectState,
	)
	return result, nil
}

// CloseSession abandons a session without an outcome.
func (s *service) CloseSession(
	ctx context.Context,
	principal identity.Principal,
	sessionID string,
	reason string,
) (*model.SessionResponse, error) {
	s.logger.Debugw("CloseSession called", "session_id", sessionID, "actor", principal.UserID)

	if !isGateAuthority(principal) {
		return nil, model.ErrGateAuthorityRequired
	}
	reason = strings.TrimSpace(reason)

	var (
		result  *model.SessionResponse
		pending []events.Event
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc := s.scope(tx)

		session, err := sc.reviews.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		switch session.Status {
		case model.SessionApproved:
			return model.ErrSessionApproved
		case model.SessionClosed:
			result, err = loadSession(ctx, sc.reviews, sessionID)
			return err
		}

		if _, err := sc.reviews.UpdateSession(ctx, sessionID, nil, map[string]any{
			"status":        model.SessionClosed,
			"open_slot":     nil,
			"closed_reason": reason,
		}); err != nil {
			return err
		}

		if _, err := sc.projects.SetStatus(ctx, session.ProjectID,
			[]projectModel.Status{projectModel.StatusPendingReview}, projectModel.StatusActive); err != nil {
			return err
		}

		_, err = sc.activities.Record(ctx, activityModel.Entry{
			UserID:    principal.UserID,
			ProjectID: session.ProjectID,
			Action:    activityModel.ActionSessionClosed,
			Details:   map[string]any{"session_id": sessionID, "reason": reason},
		})
		if err != nil {
			return err
		}

		project, err := sc.projects.GetByID(ctx, session.ProjectID)
		if err != nil {
			return err
		}
		result, err = loadSession(ctx, sc.reviews, sessionID)
		if err != nil {
			return err
		}

		recipients := []string{project.LeadID}
		for _, a := range result.Assignments {
			recipients = append(recipients, a.ReviewerID)
		}
		pending = append(pending, events.Event{
			Type:       notificationModel.TypeSessionClosed,
			ActorID:    principal.UserID,
			ProjectID:  project.ID,
			SessionID:  sessionID,
			Recipients: events.Recipients(recipients...),
			Title:      fmt.Sprintf("Gate review closed: %s %s", project.Code, session.Stage),
			Message:    reason,
			Data:       map[string]any{"project_id": project.ID, "session_id": sessionID, "reason": reason},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(pending) > 0 {
		s.publisher.Publish(ctx, pending...)
	}

	s.logger.Infow("CloseSession completed", "session_id", sessionID)
	return result, nil
}

// GetSession returns a session with its assignments, reviews and summary.
func (s *service) GetSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return loadSession(ctx, s.repo, sessionID)
}

// ListProjectSessions returns a project's sessions.
func (s *service) ListProjectSessions(ctx context.Context, projectID string) ([]model.ReviewSession, error) {
	if _, err := projectRepository.New(s.db, s.logger).GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListSessionsByProject(ctx, projectID)
}

// ListReviewerAssignments returns a reviewer's workload.
func (s *service) ListReviewerAssignments(ctx context.Context, reviewerID string) ([]model.ReviewerAssignment, error) {
	if _, err := userRepository.New(s.db, s.logger).GetByID(ctx, reviewerID); err != nil {
		return nil, err
	}
	return s.repo.ListReviewerAssignments(ctx, reviewerID)
}

// recompute derives the session counters and status from the stored
// reviews and writes them back.
func recompute(
	ctx context.Context,
	reviews repository.Repository,
	session *model.ReviewSession,
) (*model.ReviewSession, error) {
	list, err := reviews.ListSessionReviews(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	summary := policy.Summarize(list, session.RequiredReviewers)
	status := policy.NextStatus(session.Status, summary.Completed, summary.Required)

	if _, err := reviews.UpdateSession(ctx, session.ID, nil, map[string]any{
		"required_reviewers": session.RequiredReviewers,
		"completed_reviews":  summary.Completed,
		"average_score":      policy.OptionPtr(summary.Average),
		"status":             status,
	}); err != nil {
		return nil, err
	}
	return reviews.GetSession(ctx, session.ID)
}

func loadSession(ctx context.Context, reviews repository.Repository, sessionID string) (*model.SessionResponse, error) {
	session, err := reviews.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	assignments, err := reviews.ListAssignments(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	list, err := reviews.ListSessionReviews(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary := policy.Summarize(list, session.RequiredReviewers)
	average := policy.OptionPtr(summary.Average)
	return &model.SessionResponse{
		ReviewSession:         *session,
		AverageScoreFivePoint: policy.FivePointPtr(session.AverageScore),
		Assignments:           assignments,
		Reviews:               list,
		Summary: model.Summary{
			Completed:             summary.Completed,
			Required:              summary.Required,
			AverageScore:          average,
			AverageScoreFivePoint: policy.FivePointPtr(average),
			Breakdown:             summary.Breakdown,
			ReadyForApproval:      summary.Ready,
		},
	}, nil
}
