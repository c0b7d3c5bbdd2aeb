package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a stored or configured value onto a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAdmin:
		return Role(s), nil
	case "":
		return RoleStudent, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// CanAdminister reports whether the role may triage, update and delete any
// complaint.
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}

// User represents application user.
type User struct {
	ID           uint    `gorm:"primaryKey"`
	Username     string  `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	Name         string  `gorm:"size:128;not null"`
	Email        *string `gorm:"size:255"`
	Role         Role    `gorm:"size:16;not null;default:student"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeSave rejects roles outside the enumeration and fills the default.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleStudent
	}
	if !u.Role.Valid() {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role.CanAdminister()
}
