// Package model provides the red flag model.
package model

import "time"

// Severity grades a red flag.
type Severity string

// Severities.
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ParseSeverity parses a severity name. Empty input defaults to MEDIUM.
func ParseSeverity(s string) (Severity, bool) {
	switch sev := Severity(s); sev {
	case "":
		return SeverityMedium, true
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, true
	}
	return "", false
}

// Status is the red flag state.
type Status string

// Red flag states.
const (
	StatusOpen     Status = "OPEN"
	StatusResolved Status = "RESOLVED"
)

// RedFlag is a risk raised against a project.
// Matches the red_flags table schema.
type RedFlag struct {
	ID          string     `gorm:"primaryKey;column:id;type:varchar(36)"                                   json:"id"`
	ProjectID   string     `gorm:"column:project_id;type:varchar(36);not null;index:idx_red_flags_project" json:"project_id"`
	RaisedBy    string     `gorm:"column:raised_by;type:varchar(255);not null"                             json:"raised_by"`
	Title       string     `gorm:"column:title;type:varchar(255);not null"                                 json:"title"`
	Description string     `gorm:"column:description;type:text;not null;default:''"                       json:"description"`
	Severity    Severity   `gorm:"column:severity;type:varchar(16);not null"                               json:"severity"`
	Status      Status     `gorm:"column:status;type:varchar(16);not null"                                 json:"status"`
	ResolvedBy  *string    `gorm:"column:resolved_by;type:varchar(255)"                                    json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"                                     json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"                             json:"created_at"`
}

// TableName specifies the table name for GORM.
func (RedFlag) TableName() string {
	return "red_flags"
}

// RaiseRequest represents the request to raise a red flag.
type RaiseRequest struct {
	Title       string `json:"title"       binding:"required"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}
