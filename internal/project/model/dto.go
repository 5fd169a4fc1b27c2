package model

// CreateProjectRequest represents the request to create a project.
type CreateProjectRequest struct {
	Name              string  `json:"name"               binding:"required"`
	Description       string  `json:"description"`
	BusinessCase      string  `json:"business_case"`
	BudgetAmount      float64 `json:"budget_amount"`
	BudgetUtilization float64 `json:"budget_utilization"`
	DurationMonths    int     `json:"duration_months"`
	Cluster           string  `json:"cluster"`
	// LeadID defaults to the acting principal.
	LeadID string `json:"lead_id"`
}

// UpdateProjectRequest carries the editable project attributes. Nil fields
// are left unchanged.
type UpdateProjectRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	BusinessCase      *string  `json:"business_case"`
	BudgetAmount      *float64 `json:"budget_amount"`
	BudgetUtilization *float64 `json:"budget_utilization"`
	DurationMonths    *int     `json:"duration_months"`
	Cluster           *string  `json:"cluster"`
}

// AddMemberRequest represents the request to add a project member.
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// ListFilter narrows ListProjects. Empty fields match everything.
type ListFilter struct {
	Stage   string `form:"stage"`
	Status  string `form:"status"`
	Cluster string `form:"cluster"`
}

// ProjectResponse is a project together with its member ids.
type ProjectResponse struct {
	Project
	Members []string `json:"members"`
}
