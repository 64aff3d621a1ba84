package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the point-of-sale role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// User is a point-of-sale operator. Contracts record the agent who created them.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Username      string         `gorm:"uniqueIndex;size:150;not null" json:"username"`
	FirstName     string         `gorm:"size:150" json:"first_name,omitempty"`
	LastName      string         `gorm:"size:150" json:"last_name,omitempty"`
	Email         string         `gorm:"size:255" json:"email,omitempty"`
	Role          Role           `gorm:"size:20;default:'agent'" json:"role"`
	Phone         string         `gorm:"size:20" json:"phone,omitempty"`
	StoreLocation string         `gorm:"size:100" json:"store_location,omitempty"`
}

// DisplayName returns "First Last", or the username when no name is set.
func (u *User) DisplayName() string {
	name := joinNonEmpty(" ", u.FirstName, u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
