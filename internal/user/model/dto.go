package model

// UpsertUserRequest creates or replaces a directory entry.
type UpsertUserRequest struct {
	UserID   string `json:"user_id"   binding:"required"`
	Name     string `json:"name"      binding:"required"`
	Email    string `json:"email"`
	Role     string `json:"role"      binding:"required"`
	IsActive *bool  `json:"is_active"`
}

// SetIsActiveRequest represents the request to update user activity status.
type SetIsActiveRequest struct {
	UserID   string `json:"user_id"   binding:"required"`
	IsActive *bool  `json:"is_active"`
}
