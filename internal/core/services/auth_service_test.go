package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/core/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shahrfin/municipal_budget_app/internal/platform/config"
	"github.com/shahrfin/municipal_budget_app/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	userRepo *fakeUserRepo
	sessions *fakeSessionStore
	service  portssvc.AuthSvcFacade
	userSvc  portssvc.UserSvcFacade
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.userRepo = newFakeUserRepo()
	suite.sessions = newFakeSessionStore()
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "municipal-budget-app",
		SessionTTL:        8 * time.Hour,
	}
	suite.service = services.NewAuthService(cfg, suite.userRepo, suite.sessions)
	suite.userSvc = services.NewUserService(suite.userRepo)
}

func (suite *AuthServiceTestSuite) seedUser(username, password string, role domain.UserRole) *domain.User {
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	suite.Require().NoError(suite.userRepo.SaveUser(context.Background(), user))
	return &user
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	user := suite.seedUser("clerk", "s3cret-pass", domain.RoleUser)

	resp, err := suite.service.Login(context.Background(), dto.LoginRequest{
		Username: "clerk",
		Password: "s3cret-pass",
	})
	suite.Require().NoError(err)
	suite.NotEmpty(resp.AccessToken)
	suite.Equal(user.UserID, resp.User.UserID)

	claims, err := utils.ParseAndValidateJWT(resp.AccessToken, "test-secret")
	suite.Require().NoError(err)
	suite.Equal(user.UserID, claims.Subject)

	// The token's ID claim keys a live session.
	ownerID, err := suite.sessions.GetSession(context.Background(), claims.ID)
	suite.Require().NoError(err)
	suite.Equal(user.UserID, ownerID)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	suite.seedUser("clerk", "s3cret-pass", domain.RoleUser)

	_, err := suite.service.Login(context.Background(), dto.LoginRequest{
		Username: "clerk",
		Password: "wrong",
	})
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownUserSameAnswer() {
	_, err := suite.service.Login(context.Background(), dto.LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLogin_InactiveUser() {
	user := suite.seedUser("clerk", "s3cret-pass", domain.RoleUser)
	user.IsActive = false
	suite.Require().NoError(suite.userRepo.SaveUser(context.Background(), *user))

	_, err := suite.service.Login(context.Background(), dto.LoginRequest{
		Username: "clerk",
		Password: "s3cret-pass",
	})
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLogout_RemovesSession() {
	suite.seedUser("clerk", "s3cret-pass", domain.RoleUser)

	resp, err := suite.service.Login(context.Background(), dto.LoginRequest{
		Username: "clerk",
		Password: "s3cret-pass",
	})
	suite.Require().NoError(err)

	claims, err := utils.ParseAndValidateJWT(resp.AccessToken, "test-secret")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Logout(context.Background(), claims.ID))

	_, err = suite.sessions.GetSession(context.Background(), claims.ID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AuthServiceTestSuite) TestCreateUser_RequiresSuperuser() {
	admin := suite.seedUser("root", "root-password", domain.RoleAdmin)
	clerk := suite.seedUser("clerk", "s3cret-pass", domain.RoleUser)

	req := dto.CreateUserRequest{
		Username: "newclerk",
		Name:     "New Clerk",
		Password: "longenough",
		Role:     string(domain.RoleAdminL1),
	}

	_, err := suite.userSvc.CreateUser(context.Background(), req, clerk.UserID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	created, err := suite.userSvc.CreateUser(context.Background(), req, admin.UserID)
	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdminL1, created.Role)
	suite.Equal(1, created.ApprovalLevel())
}

func (suite *AuthServiceTestSuite) TestCreateUser_DuplicateUsername() {
	admin := suite.seedUser("root", "root-password", domain.RoleAdmin)
	suite.seedUser("clerk", "s3cret-pass", domain.RoleUser)

	_, err := suite.userSvc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "clerk",
		Name:     "Duplicate",
		Password: "longenough",
		Role:     string(domain.RoleUser),
	}, admin.UserID)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
