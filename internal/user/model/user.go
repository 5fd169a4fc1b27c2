// Package model provides the user directory model.
package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/identity"
)

// User mirrors an identity issued by the identity provider.
// Matches the users table schema.
type User struct {
	UserID    string        `gorm:"primaryKey;column:user_id;type:varchar(255)"                   json:"user_id"`
	Name      string        `gorm:"column:name;type:varchar(255);not null"                        json:"name"`
	Email     string        `gorm:"column:email;type:varchar(255);not null;default:''"            json:"email"`
	Role      identity.Role `gorm:"column:role;type:varchar(32);not null;index:idx_users_role"    json:"role"`
	IsActive  bool          `gorm:"column:is_active;not null"                                     json:"is_active"`
	CreatedAt time.Time     `gorm:"column:created_at;not null"                   json:"-"`
	UpdatedAt time.Time     `gorm:"column:updated_at;not null"                   json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now().UTC()
	return nil
}
