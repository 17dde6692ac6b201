package dto

import (
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
)

// LoginRequest authenticates a user by username and password.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the access token; the session itself lives in the
// external session store until its TTL expires or the user logs out.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}

// CreateUserRequest registers a system user.
type CreateUserRequest struct {
	Username  string  `json:"username" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Password  string  `json:"password" binding:"required,min=8"`
	Role      string  `json:"role" binding:"required,oneof=user admin admin_l1 admin_l2 admin_l3 admin_l4"`
	OrgUnitID *string `json:"orgUnitID"`
}

// ListUsersParams paginates the user listing.
type ListUsersParams struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// UserResponse is the API shape of a user; password hash never leaves the server.
type UserResponse struct {
	UserID    string  `json:"userID"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	OrgUnitID *string `json:"orgUnitID"`
	IsActive  bool    `json:"isActive"`
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      string(u.Role),
		OrgUnitID: u.OrgUnitID,
		IsActive:  u.IsActive,
	}
}

func ToUserResponses(us []domain.User) []UserResponse {
	out := make([]UserResponse, len(us))
	for i := range us {
		out[i] = ToUserResponse(&us[i])
	}
	return out
}
