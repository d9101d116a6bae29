package models

import (
	"time"
)

// User mirrors an identity-provider account. Rows are created on first
// sign-in and removed (with all owned records) on account deletion.
type User struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID         string     `gorm:"size:255;not null;uniqueIndex:idx_users_user_id" json:"userId"`
	Email          string     `gorm:"size:255;not null" json:"email"`
	SubscriptionID *string    `gorm:"size:255" json:"subscriptionId,omitempty"`
	EndsOn         *time.Time `json:"endsOn,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
