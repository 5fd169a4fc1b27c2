package model

import "time"

// AssignReviewersRequest represents the request to open a review session.
type AssignReviewersRequest struct {
	ProjectID   string     `json:"project_id"   binding:"required"`
	Stage       string     `json:"stage"`
	ReviewerIDs []string   `json:"reviewer_ids"`
	DueDate     *time.Time `json:"due_date"`
}

// SubmitReviewRequest represents a reviewer's submission. The reviewer is
// always the acting principal.
type SubmitReviewRequest struct {
	SessionID string   `json:"session_id"`
	Score     *float64 `json:"score"`
	Decision  string   `json:"decision"`
	Comments  string   `json:"comments"`
}

// UpdateReviewRequest revises a submitted review.
type UpdateReviewRequest struct {
	Score    *float64 `json:"score"`
	Decision string   `json:"decision"`
	Comments string   `json:"comments"`
}

// ProjectReviewRequest records a review through the project endpoint.
type ProjectReviewRequest struct {
	Stage      string   `json:"stage"`
	ReviewerID string   `json:"reviewer_id"`
	Score      *float64 `json:"score"`
	Decision   string   `json:"decision"`
	Comments   string   `json:"comments"`
}

// AddReviewerRequest adds a reviewer to an open session.
type AddReviewerRequest struct {
	ReviewerID string `json:"reviewer_id" binding:"required"`
}

// Session actions accepted by PUT /api/review-sessions/:id.
const (
	ActionApprove = "approve"
	ActionClose   = "close"
)

// SessionActionRequest approves or closes a session.
type SessionActionRequest struct {
	Action   string `json:"action"   binding:"required"`
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// Summary is the aggregate view shown to the approving gatekeeper.
type Summary struct {
	Completed             int              `json:"completed"`
	Required              int              `json:"required"`
	AverageScore          *float64         `json:"average_score"`
	AverageScoreFivePoint *float64         `json:"average_score_five_point"`
	Breakdown             map[Decision]int `json:"breakdown"`
	ReadyForApproval      bool             `json:"ready_for_approval"`
}

// SessionResponse is a session with its assignments, reviews and summary.
type SessionResponse struct {
	ReviewSession
	AverageScoreFivePoint *float64           `json:"average_score_five_point"`
	Assignments           []ReviewAssignment `json:"assignments"`
	Reviews               []GateReview       `json:"reviews"`
	Summary               Summary            `json:"summary"`
}

// ApproveResult reports an approval. Applied is false when the session was
// already approved and nothing changed.
type ApproveResult struct {
	Session      *SessionResponse `json:"session"`
	Applied      bool             `json:"applied"`
	ProjectStage string           `json:"project_stage"`
	ProjectState string           `json:"project_status"`
}

// ReviewerAssignment is one entry of a reviewer's workload.
type ReviewerAssignment struct {
	SessionID     string           `json:"session_id"`
	ProjectID     string           `json:"project_id"`
	Stage         string           `json:"stage"`
	SessionStatus SessionStatus    `json:"session_status"`
	Status        AssignmentStatus `json:"status"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	AssignedAt    time.Time        `json:"assigned_at"`
}
