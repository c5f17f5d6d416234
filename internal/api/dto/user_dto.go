package dto

import (
	"time"

	"github.com/spec-kit/auth-gateway/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	UserName     string `json:"userName" form:"userName"`
	UserPassword string `json:"userPassword" form:"userPassword"`
	UserRole     string `json:"userRole" form:"userRole"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	UserName     string `json:"userName" form:"userName"`
	UserPassword string `json:"userPassword" form:"userPassword"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	UserName  string    `json:"userName"`
	UserRoles []string  `json:"userRoles"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public view of a stored user; the password hash is
// never exposed.
type UserResponse struct {
	UserName  string     `json:"userName"`
	UserRole  string     `json:"userRole"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{UserName: u.Name, UserRole: string(u.Role)}
	if !u.CreatedAt.IsZero() {
		createdAt := u.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

// NewUserResponses maps a list of users.
func NewUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
