package model

import "github.com/festy23/stagegate/internal/apperr"

var (
	// ErrProjectNotFound indicates that the requested project does not exist.
	ErrProjectNotFound = apperr.NotFound("project not found")
	// ErrInvalidProjectName indicates a missing or oversized project name.
	ErrInvalidProjectName = apperr.Validation("name must be between 1 and 255 characters")
	// ErrInvalidBudget indicates a negative budget or a utilization outside 0-100.
	ErrInvalidBudget = apperr.Validation("budget_amount must be non-negative and budget_utilization within 0-100")
	// ErrInvalidDuration indicates a negative duration.
	ErrInvalidDuration = apperr.Validation("duration_months must be non-negative")
	// ErrInvalidStage indicates an unknown stage name.
	ErrInvalidStage = apperr.Validation("stage must be one of STAGE_0, STAGE_1, STAGE_2, STAGE_3")
	// ErrInvalidStatus indicates an unknown status name.
	ErrInvalidStatus = apperr.Validation("unknown project status")
	// ErrInvalidUserID indicates a missing user id.
	ErrInvalidUserID = apperr.Validation("user_id is required")
	// ErrUnknownLead indicates a lead missing from the directory or inactive.
	ErrUnknownLead = apperr.Validation("lead must be an active user")
	// ErrUnknownMember indicates a member missing from the directory or inactive.
	ErrUnknownMember = apperr.Validation("member must be an active user")
	// ErrMemberExists indicates that the user is already a member or the lead.
	ErrMemberExists = apperr.Conflict("user is already a project member")
	// ErrNotProjectEditor indicates the principal may not edit the project.
	ErrNotProjectEditor = apperr.Authorization("only the project lead or an admin may edit the project")
	// ErrNotMemberManager indicates the principal may not manage membership.
	ErrNotMemberManager = apperr.Authorization("only the project lead, an admin or a gatekeeper may add members")
	// ErrDeleteForbidden indicates that only admins may delete projects.
	ErrDeleteForbidden = apperr.Authorization("only an admin may delete a project")
	// ErrStageRegression indicates an attempt to move a project to an earlier stage.
	ErrStageRegression = apperr.Precondition("project stage cannot move backwards")
	// ErrStageChanged indicates the project stage moved since it was read.
	ErrStageChanged = apperr.Conflict("project stage changed concurrently")
	// ErrCodeExhausted indicates that project code allocation kept colliding.
	ErrCodeExhausted = apperr.Conflict("could not allocate a project code")
)
