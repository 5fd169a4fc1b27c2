// Package model provides domain models and DTOs for gate reviews.
package model

import (
	"fmt"
	"time"

	projectModel "github.com/festy23/stagegate/internal/project/model"
)

// Decision is the qualitative outcome of a gate review or an approval.
type Decision string

// Decisions.
const (
	DecisionGo      Decision = "GO"
	DecisionRecycle Decision = "RECYCLE"
	DecisionHold    Decision = "HOLD"
	DecisionStop    Decision = "STOP"
)

// Decisions lists every decision.
var Decisions = []Decision{DecisionGo, DecisionRecycle, DecisionHold, DecisionStop}

// ParseDecision parses a decision name.
func ParseDecision(s string) (Decision, bool) {
	for _, d := range Decisions {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	_, ok := ParseDecision(string(d))
	return ok
}

// SessionStatus is the review session state.
type SessionStatus string

// Session states.
const (
	SessionPending    SessionStatus = "PENDING"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionApproved   SessionStatus = "APPROVED"
	// SessionClosed marks a session abandoned without approval.
	SessionClosed SessionStatus = "CLOSED"
)

// IsTerminal reports whether no further reviews may change the session.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionApproved || s == SessionClosed
}

// AssignmentStatus is the state of one reviewer's assignment.
type AssignmentStatus string

// Assignment states.
const (
	AssignmentAssigned   AssignmentStatus = "ASSIGNED"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentCompleted  AssignmentStatus = "COMPLETED"
)

// OpenSlot is the value of ReviewSession.OpenSlot while the session is open.
// A unique index on it allows one open session per project and stage.
func OpenSlot(projectID string, stage projectModel.Stage) string {
	return fmt.Sprintf("%s:%s", projectID, stage)
}

// ReviewSession groups the assignments and reviews of one project gate.
// Matches the review_sessions table schema.
type ReviewSession struct {
	ID                string             `gorm:"primaryKey;column:id;type:varchar(36)"                                       json:"id"`
	ProjectID         string             `gorm:"column:project_id;type:varchar(36);not null;index:idx_sessions_project_id"   json:"project_id"`
	Stage             projectModel.Stage `gorm:"column:stage;type:varchar(16);not null"                                      json:"stage"`
	Status            SessionStatus      `gorm:"column:status;type:varchar(32);not null;index:idx_sessions_status"           json:"status"`
	RequiredReviewers int                `gorm:"column:required_reviewers;not null"                                          json:"required_reviewers"`
	CompletedReviews  int                `gorm:"column:completed_reviews;not null;default:0"                                 json:"completed_reviews"`
	AverageScore      *float64           `gorm:"column:average_score"                                                        json:"average_score"`
	DueDate           *time.Time         `gorm:"column:due_date"                                            json:"due_date,omitempty"`
	OpenSlot          *string            `gorm:"column:open_slot;type:varchar(64);uniqueIndex:idx_sessions_open_slot"        json:"-"`
	Decision          *Decision          `gorm:"column:decision;type:varchar(16)"                                            json:"decision,omitempty"`
	ApprovedBy        *string            `gorm:"column:approved_by;type:varchar(255)"                                        json:"approved_by,omitempty"`
	ApprovedAt        *time.Time         `gorm:"column:approved_at"                                         json:"approved_at,omitempty"`
	ClosedReason      string             `gorm:"column:closed_reason;type:text;not null;default:''"                          json:"closed_reason,omitempty"`
	CreatedBy         string             `gorm:"column:created_by;type:varchar(255);not null"                                json:"created_by"`
	CreatedAt         time.Time          `gorm:"column:created_at;not null"                                 json:"created_at"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;not null"                                 json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (ReviewSession) TableName() string {
	return "review_sessions"
}

// ReviewAssignment maps one reviewer to a session.
// Matches the review_assignments table schema.
type ReviewAssignment struct {
	ID          string           `gorm:"primaryKey;column:id;type:varchar(36)"                                                       json:"id"`
	SessionID   string           `gorm:"column:session_id;type:varchar(36);not null;uniqueIndex:idx_assignments_session_reviewer"   json:"session_id"`
	ReviewerID  string           `gorm:"column:reviewer_id;type:varchar(255);not null;uniqueIndex:idx_assignments_session_reviewer;index:idx_assignments_reviewer_id" json:"reviewer_id"`
	Status      AssignmentStatus `gorm:"column:status;type:varchar(32);not null"                                                     json:"status"`
	AssignedAt  time.Time        `gorm:"column:assigned_at;not null"                                                json:"assigned_at"`
	CompletedAt *time.Time       `gorm:"column:completed_at"                                                        json:"completed_at,omitempty"`
}

// TableName specifies the table name for GORM.
func (ReviewAssignment) TableName() string {
	return "review_assignments"
}

// GateReview is one reviewer's verdict within a session. It exists as an
// empty placeholder from assignment until submission.
// Matches the gate_reviews table schema.
type GateReview struct {
	ID          string             `gorm:"primaryKey;column:id;type:varchar(36)"                                                json:"id"`
	SessionID   string             `gorm:"column:session_id;type:varchar(36);not null;uniqueIndex:idx_reviews_session_reviewer" json:"session_id"`
	ProjectID   string             `gorm:"column:project_id;type:varchar(36);not null;index:idx_reviews_project_id"            json:"project_id"`
	Stage       projectModel.Stage `gorm:"column:stage;type:varchar(16);not null"                                               json:"stage"`
	ReviewerID  string             `gorm:"column:reviewer_id;type:varchar(255);not null;uniqueIndex:idx_reviews_session_reviewer" json:"reviewer_id"`
	Score       *float64           `gorm:"column:score"                                                                         json:"score"`
	Decision    *Decision          `gorm:"column:decision;type:varchar(16)"                                                     json:"decision"`
	Comments    string             `gorm:"column:comments;type:text;not null;default:''"                                        json:"comments"`
	IsCompleted bool               `gorm:"column:is_completed;not null;default:false"                                           json:"is_completed"`
	ReviewDate  *time.Time         `gorm:"column:review_date"                                                  json:"review_date,omitempty"`
	CreatedAt   time.Time          `gorm:"column:created_at;not null"                                          json:"created_at"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;not null"                                          json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (GateReview) TableName() string {
	return "gate_reviews"
}
