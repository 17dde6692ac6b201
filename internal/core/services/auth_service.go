package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shahrfin/municipal_budget_app/internal/platform/config"
	"github.com/shahrfin/municipal_budget_app/internal/utils"
)

// authService authenticates users and manages the session records backing
// their tokens. A token stays valid only as long as its session exists in
// the store.
type authService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	sessions portsrepo.SessionStore
	cfg      *config.Config
}

// NewAuthService creates the authentication service.
func NewAuthService(cfg *config.Config, userRepo portsrepo.UserRepositoryFacade, sessions portsrepo.SessionStore) portssvc.AuthSvcFacade {
	return &authService{cfg: cfg, userRepo: userRepo, sessions: sessions}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same answer as a bad password so usernames cannot be probed.
			return nil, apperrors.ErrUnauthorized
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}
	if !user.IsActive {
		s.LogWarn(ctx, "Login attempt on inactive account",
			slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.LogWarn(ctx, "Failed login attempt",
			slog.String("username", req.Username))
		return nil, apperrors.ErrUnauthorized
	}

	sessionID, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate session id")
		return nil, apperrors.NewAppError(500, "failed to create session", err)
	}
	expiresAt := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(user.UserID, sessionID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token")
		return nil, apperrors.NewAppError(500, "failed to issue token", err)
	}

	if err := s.sessions.PutSession(ctx, sessionID, user.UserID, s.cfg.SessionTTL); err != nil {
		s.LogError(ctx, err, "Failed to store session",
			slog.String("user_id", user.UserID))
		return nil, apperrors.NewAppError(500, "failed to create session", err)
	}

	s.LogInfo(ctx, "User logged in",
		slog.String("user_id", user.UserID),
		slog.String("session_id", sessionID))
	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        dto.ToUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		s.LogError(ctx, err, "Failed to delete session",
			slog.String("session_id", sessionID))
		return err
	}
	s.LogInfo(ctx, "User logged out",
		slog.String("session_id", sessionID))
	return nil
}
