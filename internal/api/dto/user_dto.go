package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	FullName       string  `json:"fullName"`
	ProfilePicture *string `json:"profilePicture"`
	Role           string  `json:"role"`
	Status         string  `json:"status"`
}

// Input converts the request into the service input.
func (r RegisterRequest) Input() service.RegisterInput {
	return service.RegisterInput{
		Username:       r.Username,
		Email:          r.Email,
		Password:       r.Password,
		FullName:       r.FullName,
		ProfilePicture: r.ProfilePicture,
		Role:           r.Role,
		Status:         r.Status,
	}
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the bearer token issued at login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account. The password hash is never included.
type UserResponse struct {
	ID             int64             `json:"id"`
	Username       string            `json:"username"`
	Email          string            `json:"email"`
	FullName       string            `json:"fullName"`
	ProfilePicture *string           `json:"profilePicture,omitempty"`
	Role           domain.UserRole   `json:"role"`
	Status         domain.UserStatus `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// ProfileResponse is UserResponse plus display initials.
type ProfileResponse struct {
	UserResponse
	Initials string `json:"initials"`
}

// SessionUser identifies the caller in GET /session.
type SessionUser struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// SessionResponse reports whether the caller holds a live session.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
		Role:           u.Role,
		Status:         u.Status,
		CreatedAt:      u.CreatedAt,
	}
}

// NewProfileResponse maps a service profile.
func NewProfileResponse(p *service.Profile) ProfileResponse {
	return ProfileResponse{UserResponse: NewUserResponse(p.User), Initials: p.Initials}
}
