// Package model provides the audit log model.
package model

import (
	"encoding/json"
	"time"
)

// Audit actions.
const (
	ActionProjectCreated      = "project_created"
	ActionProjectUpdated      = "project_updated"
	ActionProjectDeleted      = "project_deleted"
	ActionMemberAdded         = "member_added"
	ActionReviewersAssigned   = "reviewers_assigned"
	ActionReviewerAdded       = "reviewer_added"
	ActionGateReviewSubmitted = "gate_review_submitted"
	ActionGateReviewUpdated   = "gate_review_updated"
	ActionSessionClosed       = "review_session_closed"
	ActionStageTransition     = "stage_transition"
	ActionRedFlagRaised       = "red_flag_raised"
	ActionRedFlagResolved     = "red_flag_resolved"
)

// ActivityLog is an append-only audit entry.
// Matches the activity_logs table schema.
type ActivityLog struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(36)"                             json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(255);not null"                         json:"user_id"`
	ProjectID *string   `gorm:"column:project_id;type:varchar(36);index:idx_activity_project_id" json:"project_id,omitempty"`
	Action    string    `gorm:"column:action;type:varchar(64);not null"                           json:"action"`
	Details   string    `gorm:"column:details;type:text;not null;default:'{}'"                    json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;not null"                       json:"created_at"`
}

// TableName specifies the table name for GORM.
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// MarshalJSON embeds Details as a JSON object rather than a string.
func (a ActivityLog) MarshalJSON() ([]byte, error) {
	type alias ActivityLog
	details := json.RawMessage(a.Details)
	if !json.Valid(details) {
		details = json.RawMessage("{}")
	}
	return json.Marshal(struct {
		alias
		Details json.RawMessage `json:"details"`
	}{alias: alias(a), Details: details})
}

// Entry is the input of Record.
type Entry struct {
	UserID    string
	ProjectID string
	Action    string
	Details   map[string]any
}
