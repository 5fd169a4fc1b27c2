package model

import "github.com/festy23/stagegate/internal/apperr"

var (
	// ErrSessionNotFound indicates that the review session does not exist.
	ErrSessionNotFound = apperr.NotFound("review session not found")
	// ErrAssignmentNotFound indicates that the reviewer is not assigned to the session.
	ErrAssignmentNotFound = apperr.NotFound("review assignment not found")
	// ErrReviewNotFound indicates that the gate review does not exist.
	ErrReviewNotFound = apperr.NotFound("gate review not found")
	// ErrNoOpenSession indicates that no open session exists for the project stage.
	ErrNoOpenSession = apperr.NotFound("no open review session for this project stage")

	// ErrInvalidStage indicates a missing or unknown stage.
	ErrInvalidStage = apperr.Validation("stage must be one of STAGE_0, STAGE_1, STAGE_2, STAGE_3")
	// ErrNoReviewers indicates an empty reviewer list.
	ErrNoReviewers = apperr.Validation("reviewer_ids must not be empty")
	// ErrBlankReviewer indicates an empty reviewer id.
	ErrBlankReviewer = apperr.Validation("reviewer_ids must not contain blank ids")
	// ErrDuplicateReviewers indicates a reviewer listed twice.
	ErrDuplicateReviewers = apperr.Validation("reviewer_ids must not contain duplicates")
	// ErrUnknownReviewer indicates a reviewer missing from the directory or inactive.
	ErrUnknownReviewer = apperr.Validation("reviewer is not an active user")
	// ErrInvalidDecision indicates a decision outside GO, RECYCLE, HOLD, STOP.
	ErrInvalidDecision = apperr.Validation("decision must be one of GO, RECYCLE, HOLD, STOP")
	// ErrCommentsTooShort indicates comments under the configured minimum.
	ErrCommentsTooShort = apperr.Validation("comments are too short")
	// ErrScoreOutOfRange indicates a score outside the configured range.
	ErrScoreOutOfRange = apperr.Validation("score is out of range")
	// ErrInvalidAction indicates an unknown session action.
	ErrInvalidAction = apperr.Validation("action must be approve or close")
	// ErrInvalidSessionID indicates a missing session id.
	ErrInvalidSessionID = apperr.Validation("session_id is required")

	// ErrGateAuthorityRequired indicates the principal is neither admin nor gatekeeper.
	ErrGateAuthorityRequired = apperr.Authorization("only an admin or gatekeeper may perform this action")
	// ErrNotAssigned indicates the reviewer has no assignment in the session.
	ErrNotAssigned = apperr.Authorization("reviewer is not assigned to this session")
	// ErrNotReviewOwner indicates a reviewer acting on someone else's review.
	ErrNotReviewOwner = apperr.Authorization("reviews may only be submitted by their reviewer")

	// ErrOpenSessionExists indicates an open session for the same project stage.
	ErrOpenSessionExists = apperr.Conflict("an open review session already exists for this project stage")
	// ErrSessionApproved indicates the session is approved and immutable.
	ErrSessionApproved = apperr.Conflict("review session is already approved")
	// ErrAlreadySubmitted indicates the reviewer already completed the review.
	ErrAlreadySubmitted = apperr.Conflict("review has already been submitted")
	// ErrReviewLocked indicates a revision after the session was approved or closed.
	ErrReviewLocked = apperr.Conflict("review can no longer be changed")
	// ErrReviewerAssigned indicates the reviewer is already in the session.
	ErrReviewerAssigned = apperr.Conflict("reviewer is already assigned to this session")

	// ErrSessionClosed indicates the session was abandoned.
	ErrSessionClosed = apperr.Precondition("review session is closed")
	// ErrSessionNotCompleted indicates approval before all reviews are in.
	ErrSessionNotCompleted = apperr.Precondition("review session is not completed")
	// ErrStageMismatch indicates a session for a stage other than the project's current one.
	ErrStageMismatch = apperr.Precondition("stage is not the project's current stage")
	// ErrProjectClosed indicates a completed or terminated project.
	ErrProjectClosed = apperr.Precondition("project is completed or terminated")
	// ErrReviewNotSubmitted indicates an update to a review that was never submitted.
	ErrReviewNotSubmitted = apperr.Precondition("review has not been submitted yet")
	// ErrReviewersLocked indicates adding a reviewer after all reviews are in.
	ErrReviewersLocked = apperr.Precondition("reviewers can only be added while reviews are outstanding")
	// ErrAssignmentCompleted indicates starting an assignment that is already done.
	ErrAssignmentCompleted = apperr.Precondition("assignment is already completed")
)
