// Package model provides domain models and DTOs for the project module.
package model

import (
	"fmt"
	"time"
)

// Stage is a fixed, ordered project lifecycle phase.
type Stage string

// Stages in lifecycle order.
const (
	Stage0 Stage = "STAGE_0"
	Stage1 Stage = "STAGE_1"
	Stage2 Stage = "STAGE_2"
	Stage3 Stage = "STAGE_3"
)

// Stages lists every stage in order.
var Stages = []Stage{Stage0, Stage1, Stage2, Stage3}

// ParseStage parses a stage name.
func ParseStage(s string) (Stage, bool) {
	for _, stage := range Stages {
		if string(stage) == s {
			return stage, true
		}
	}
	return "", false
}

// Index returns the position of the stage in lifecycle order, or -1.
func (s Stage) Index() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Next returns the following stage. ok is false for the final stage.
func (s Stage) Next() (Stage, bool) {
	i := s.Index()
	if i < 0 || i == len(Stages)-1 {
		return "", false
	}
	return Stages[i+1], true
}

// IsFinal reports whether s is the last stage.
func (s Stage) IsFinal() bool {
	return s == Stages[len(Stages)-1]
}

// Status is the project lifecycle status.
type Status string

// Project statuses.
const (
	StatusActive        Status = "ACTIVE"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusOnHold        Status = "ON_HOLD"
	StatusRedFlag       Status = "RED_FLAG"
	StatusCompleted     Status = "COMPLETED"
	StatusTerminated    Status = "TERMINATED"
)

// ParseStatus parses a status name.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusActive, StatusPendingReview, StatusOnHold, StatusRedFlag, StatusCompleted, StatusTerminated:
		return st, true
	}
	return "", false
}

// IsClosed reports whether the project lifecycle has ended.
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusTerminated
}

// CodePrefix prefixes every project code.
const CodePrefix = "PRJ-"

// FormatCode renders the human readable code for a sequence number.
func FormatCode(seq int) string {
	return fmt.Sprintf("%s%04d", CodePrefix, seq)
}

// Project is the object under gate governance.
// Matches the projects table schema. ResumeStatus is set only while Status
// is RED_FLAG and holds the status restored when the last open flag resolves.
type Project struct {
	ID                string    `gorm:"primaryKey;column:id;type:varchar(36)"                                json:"id"`
	Code              string    `gorm:"column:code;type:varchar(16);not null;uniqueIndex:idx_projects_code"  json:"code"`
	CodeSeq           int       `gorm:"column:code_seq;not null;uniqueIndex:idx_projects_code_seq"          json:"-"`
	Name              string    `gorm:"column:name;type:varchar(255);not null"                               json:"name"`
	Description       string    `gorm:"column:description;type:text;not null;default:''"                     json:"description"`
	BusinessCase      string    `gorm:"column:business_case;type:text;not null;default:''"                   json:"business_case"`
	BudgetAmount      float64   `gorm:"column:budget_amount;not null;default:0"                              json:"budget_amount"`
	BudgetUtilization float64   `gorm:"column:budget_utilization;not null;default:0"                         json:"budget_utilization"`
	DurationMonths    int       `gorm:"column:duration_months;not null;default:0"                            json:"duration_months"`
	Stage             Stage     `gorm:"column:stage;type:varchar(16);not null;index:idx_projects_stage"      json:"stage"`
	Status            Status    `gorm:"column:status;type:varchar(32);not null;index:idx_projects_status"    json:"status"`
	LeadID            string    `gorm:"column:lead_id;type:varchar(255);not null;index:idx_projects_lead_id" json:"lead_id"`
	Cluster           string    `gorm:"column:cluster;type:varchar(255);not null;default:''"                 json:"cluster"`
	ResumeStatus      *Status   `gorm:"column:resume_status;type:varchar(32)"                               json:"resume_status,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at;not null"                          json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;not null"                          json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Project) TableName() string {
	return "projects"
}

// ProjectMember is a non-lead member of a project.
// Matches the project_members table schema.
type ProjectMember struct {
	ProjectID string    `gorm:"primaryKey;column:project_id;type:varchar(36)"             json:"project_id"`
	UserID    string    `gorm:"primaryKey;column:user_id;type:varchar(255)"               json:"user_id"`
	AddedAt   time.Time `gorm:"column:added_at;not null"                 json:"added_at"`
}

// TableName specifies the table name for GORM.
func (ProjectMember) TableName() string {
	return "project_members"
}
