package services

import (
	"context"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
)

// UserSvcFacade manages system users.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, params dto.ListUsersParams) ([]domain.User, error)
}

// AuthSvcFacade authenticates users and manages their sessions in the
// external session store.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
}
