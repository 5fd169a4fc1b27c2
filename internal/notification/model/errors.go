package model

import "github.com/festy23/stagegate/internal/apperr"

var (
	// ErrNotificationNotFound indicates a missing notification or one addressed to someone else.
	ErrNotificationNotFound = apperr.NotFound("notification not found")
)
