package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vims/internal/auth/models"
	sessionstore "vims/internal/auth/store/session"
	userstore "vims/internal/auth/store/user"
	jwttoken "vims/internal/jwt_token"
	dErrors "vims/pkg/domain-errors"
	auditpublisher "vims/pkg/platform/audit/publisher"
	auditmemory "vims/pkg/platform/audit/store/memory"
	"vims/pkg/requestcontext"
)

type AuthServiceSuite struct {
	suite.Suite
	users    *userstore.InMemoryStore
	sessions *sessionstore.InMemorySessionStore
	audits   *auditmemory.InMemoryStore
	service  *Service
	ctx      context.Context
	now      time.Time
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.users = userstore.New()
	s.sessions = sessionstore.New()
	s.audits = auditmemory.NewInMemoryStore()
	tokens := jwttoken.NewService("test-signing-key", "vims-test")
	s.service = NewService(s.users, s.sessions, tokens, auditpublisher.NewPublisher(s.audits), nil, 12*time.Hour)

	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *AuthServiceSuite) register(username string) *models.User {
	user, err := s.service.Register(s.ctx, RegisterRequest{Username: username, Password: "hunter22"})
	s.Require().NoError(err)
	return user
}

func (s *AuthServiceSuite) TestRegister() {
	s.Run("requires username and password", func() {
		_, err := s.service.Register(s.ctx, RegisterRequest{Username: " ", Password: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = s.service.Register(s.ctx, RegisterRequest{Username: "ravi", Password: ""})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("hashes the password", func() {
		user := s.register("ravi")
		s.NotEqual("hunter22", user.PasswordHash)
		s.NotEmpty(user.PasswordHash)
	})

	s.Run("duplicate username is a duplicate error", func() {
		_, err := s.service.Register(s.ctx, RegisterRequest{Username: "RAVI", Password: "other"})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
	})
}

func (s *AuthServiceSuite) TestLogin() {
	user := s.register("ravi")

	s.Run("bad username and bad password are indistinguishable", func() {
		_, badUser := s.service.Login(s.ctx, "nobody", "hunter22")
		_, badPass := s.service.Login(s.ctx, "ravi", "wrong")
		s.True(dErrors.HasCode(badUser, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(badPass, dErrors.CodeUnauthorized))
		s.Equal(badUser.Error(), badPass.Error())
	})

	s.Run("success issues a live session and token", func() {
		result, err := s.service.Login(s.ctx, "ravi", "hunter22")
		s.Require().NoError(err)
		s.Equal(user.ID, result.UserID)
		s.NotEmpty(result.Token)
		s.Equal(s.now.Add(12*time.Hour), result.ExpiresAt)

		live, err := s.service.IsSessionLive(s.ctx, result.SessionID)
		s.NoError(err)
		s.True(live)
	})
}

func (s *AuthServiceSuite) TestLogout() {
	s.register("ravi")
	result, err := s.service.Login(s.ctx, "ravi", "hunter22")
	s.Require().NoError(err)

	ctx := requestcontext.WithUserID(s.ctx, result.UserID)
	s.NoError(s.service.Logout(ctx, result.SessionID))

	live, err := s.service.IsSessionLive(s.ctx, result.SessionID)
	s.NoError(err)
	s.False(live)

	s.Run("logout is idempotent", func() {
		s.NoError(s.service.Logout(ctx, "unknown-session"))
	})
}

func (s *AuthServiceSuite) TestIsSessionLiveExpiry() {
	s.register("ravi")
	result, err := s.service.Login(s.ctx, "ravi", "hunter22")
	s.Require().NoError(err)

	laterCtx := requestcontext.WithTime(context.Background(), s.now.Add(13*time.Hour))
	live, err := s.service.IsSessionLive(laterCtx, result.SessionID)
	s.NoError(err)
	s.False(live)
}

func (s *AuthServiceSuite) TestAuditTrail() {
	user := s.register("ravi")
	_, err := s.service.Login(s.ctx, "ravi", "hunter22")
	s.Require().NoError(err)
	_, _ = s.service.Login(s.ctx, "ravi", "wrong")

	events, err := s.audits.ListByUser(s.ctx, user.ID)
	s.Require().NoError(err)

	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, "user_registered")
	s.Contains(actions, "login_succeeded")
	s.Contains(actions, "login_failed")
}
