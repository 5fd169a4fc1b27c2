// Package model provides the in-app notification model.
package model

import (
	"encoding/json"
	"time"
)

// Notification types.
const (
	TypeReviewAssigned  = "REVIEW_ASSIGNED"
	TypeReviewSubmitted = "REVIEW_SUBMITTED"
	TypeSessionApproved = "SESSION_APPROVED"
	TypeSessionClosed   = "SESSION_CLOSED"
	TypeRedFlag         = "RED_FLAG"
)

// Notification is a message addressed to one user.
// Matches the notifications table schema.
type Notification struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(36)"                                  json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(255);not null;index:idx_notifications_user" json:"user_id"`
	Type      string    `gorm:"column:type;type:varchar(64);not null"                                  json:"type"`
	Title     string    `gorm:"column:title;type:varchar(255);not null"                                json:"title"`
	Message   string    `gorm:"column:message;type:text;not null;default:''"                           json:"message"`
	Data      string    `gorm:"column:data;type:text;not null;default:'{}'"                            json:"-"`
	IsRead    bool      `gorm:"column:is_read;not null;default:false"                                  json:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at;not null"                            json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// MarshalJSON embeds Data as a JSON object rather than a string.
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	data := json.RawMessage(n.Data)
	if !json.Valid(data) {
		data = json.RawMessage("{}")
	}
	return json.Marshal(struct {
		alias
		Data json.RawMessage `json:"data"`
	}{alias: alias(n), Data: data})
}
