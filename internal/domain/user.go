package domain

import (
	"strings"
	"time"
)

// UserRole describes what a user does on the project.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleDeveloper UserRole = "developer"
	UserRoleTester    UserRole = "tester"
)

// UserStatus represents lifecycle states for a user account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

// User is the domain model for people who report and work on issues.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	FullName       string
	ProfilePicture *string
	Role           UserRole
	Status         UserStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Initials returns the upper-cased first letter of every word of the full name.
func (u *User) Initials() string {
	var b strings.Builder
	for _, word := range strings.Fields(u.FullName) {
		for _, r := range word {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
	}
	return b.String()
}
