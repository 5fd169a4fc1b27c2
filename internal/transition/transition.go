// Package transition moves a project through the stage gates once a review
// session is approved. It is the only caller of the project stage writer.
package transition

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	activityModel "github.com/festy23/stagegate/internal/activity/model"
	activityRepository "github.com/festy23/stagegate/internal/activity/repository"
	"github.com/festy23/stagegate/internal/apperr"
	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/internal/events"
	notificationModel "github.com/festy23/stagegate/internal/notification/model"
	projectModel "github.com/festy23/stagegate/internal/project/model"
	projectRepository "github.com/festy23/stagegate/internal/project/repository"
	reviewModel "github.com/festy23/stagegate/internal/review/model"
)

// ErrFinalStageGo is returned for GO at the final stage under the reject policy.
var ErrFinalStageGo = apperr.Precondition("GO is not allowed at the final stage")

// ErrInvalidOutcome is returned for an outcome outside the decision set.
var ErrInvalidOutcome = apperr.Validation("decision must be one of GO, RECYCLE, HOLD, STOP")

// Plan returns the stage and status a project moves to when a session at
// stage is approved with outcome. Stage never decreases.
func Plan(
	stage projectModel.Stage,
	outcome reviewModel.Decision,
	finalStageGo string,
) (projectModel.Stage, projectModel.Status, error) {
	if !stage.Valid() {
		return "", "", projectModel.ErrInvalidStage
	}

	switch outcome {
	case reviewModel.DecisionGo:
		if next, ok := stage.Next(); ok {
			return next, projectModel.StatusActive, nil
		}
		if finalStageGo == config.FinalStageReject {
			return "", "", ErrFinalStageGo
		}
		return stage, projectModel.StatusCompleted, nil
	case reviewModel.DecisionRecycle:
		return stage, projectModel.StatusActive, nil
	case reviewModel.DecisionHold:
		return stage, projectModel.StatusOnHold, nil
	case reviewModel.DecisionStop:
		return stage, projectModel.StatusTerminated, nil
	default:
		return "", "", ErrInvalidOutcome
	}
}

// Input describes one approved session. Details are merged into the
// stage_transition activity entry.
type Input struct {
	Project   *projectModel.Project
	SessionID string
	Outcome   reviewModel.Decision
	ActorID   string
	Details   map[string]any
}

// Result is the project after the transition and the events to publish once
// the transaction commits.
type Result struct {
	Project  *projectModel.Project
	Previous projectModel.Project
	Events   []events.Event
}

// Controller applies approved outcomes to projects.
type Controller struct {
	finalStageGo string
	logger       *zap.SugaredLogger
}

// NewController creates a controller using the final stage policy of rules.
func NewController(rules config.GateConfig, logger *zap.SugaredLogger) *Controller {
	return &Controller{finalStageGo: rules.FinalStageGo, logger: logger}
}

// Apply writes the transition with tx. The caller owns the transaction and
// must publish Result.Events only after it commits.
func (c *Controller) Apply(ctx context.Context, tx *gorm.DB, in Input) (*Result, error) {
	from := in.Project.Stage
	toStage, toStatus, err := Plan(from, in.Outcome, c.finalStageGo)
	if err != nil {
		return nil, err
	}

	projects := projectRepository.New(tx, c.logger)
	updated, err := projects.ApplyTransition(ctx, in.Project.ID, from, toStage, toStatus)
	if err != nil {
		return nil, err
	}

	details := make(map[string]any, len(in.Details)+7)
	for k, v := range in.Details {
		details[k] = v
	}
	details["session_id"] = in.SessionID
	details["decision"] = in.Outcome
	details["from_stage"] = from
	details["to_stage"] = toStage
	details["from_status"] = in.Project.Status
	details["to_status"] = updated.Status
	if updated.ResumeStatus != nil {
		details["resume_status"] = *updated.ResumeStatus
	}

	activities := activityRepository.New(tx, c.logger)
	_, err = activities.Record(ctx, activityModel.Entry{
		UserID:    in.ActorID,
		ProjectID: in.Project.ID,
		Action:    activityModel.ActionStageTransition,
		Details:   details,
	})
	if err != nil {
		return nil, err
	}

	members, err := projects.ListMemberIDs(ctx, in.Project.ID)
	if err != nil {
		return nil, err
	}

	c.logger.Infow("stage transition applied",
		"project_id", in.Project.ID,
		"session_id", in.SessionID,
		"decision", in.Outcome,
		"from_stage", from,
		"to_stage", toStage,
		"status", updated.Status,
	)

	event := events.Event{
		Type:       notificationModel.TypeSessionApproved,
		ActorID:    in.ActorID,
		ProjectID:  in.Project.ID,
		SessionID:  in.SessionID,
		Recipients: events.Recipients(append([]string{updated.LeadID}, members...)...),
		Title:      fmt.Sprintf("%s gate decision: %s", updated.Code, in.Outcome),
		Message: fmt.Sprintf("Project %s moved from %s to %s with status %s.",
			updated.Name, from, toStage, updated.Status),
		Data: map[string]any{
			"project_id": updated.ID,
			"session_id": in.SessionID,
			"decision":   in.Outcome,
			"from_stage": from,
			"to_stage":   toStage,
			"status":     updated.Status,
		},
	}

	return &Result{
		Project:  updated,
		Previous: *in.Project,
		Events:   []events.Event{event},
	}, nil
}
