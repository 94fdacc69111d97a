// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the authorization role of a user account.
type Role string

const (
	RoleUser     Role = "USER"
	RoleAdmin    Role = "ADMIN"
	RoleReporter Role = "REPORTER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleReporter:
		return true
	}
	return false
}

// User represents a portal account.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      Role           `gorm:"type:varchar(16);not null;default:USER;index" json:"role"`
	Phone     string         `json:"phone,omitempty"`
	District  string         `json:"district,omitempty"`
	FCMToken  string         `gorm:"column:fcm_token" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor returns the authorization context for u.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Actor identifies who performs a mutating call.
type Actor struct {
	ID   uint
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor authored content owned by authorID.
func (a Actor) Owns(authorID uint) bool {
	return a.ID != 0 && a.ID == authorID
}
