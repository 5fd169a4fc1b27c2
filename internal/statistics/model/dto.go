// Package model provides data transfer objects for statistics module.
package model

import "github.com/festy23/stagegate/internal/identity"

// ReviewerStatistics represents the workload and scoring of one reviewer.
type ReviewerStatistics struct {
	UserID                string        `json:"user_id"`
	Name                  string        `json:"name"`
	Role                  identity.Role `json:"role"`
	IsActive              bool          `json:"is_active"`
	AssignedCount         int           `json:"assigned_count"`
	CompletedCount        int           `json:"completed_count"`
	AverageScore          *float64      `json:"average_score"`
	AverageScoreFivePoint *float64      `json:"average_score_five_point" gorm:"-"`
}

// ReviewersStatisticsResponse represents response for reviewers statistics.
type ReviewersStatisticsResponse struct {
	Reviewers []ReviewerStatistics `json:"reviewers"`
	Total     int                  `json:"total"`
}

// GroupCount is one row of a grouped count.
type GroupCount struct {
	Key   string `gorm:"column:group_key"`
	Count int64  `gorm:"column:group_count"`
}

// SessionStatistics represents review session totals.
type SessionStatistics struct {
	TotalSessions int `json:"total_sessions"`
	// ByStatus counts sessions per status, including zero entries.
	ByStatus map[string]int `json:"by_status"`
	// ByDecision counts approved sessions per gate outcome.
	ByDecision map[string]int `json:"by_decision"`
}

// SessionStatisticsResponse represents response for session statistics.
type SessionStatisticsResponse struct {
	Statistics SessionStatistics `json:"statistics"`
}
