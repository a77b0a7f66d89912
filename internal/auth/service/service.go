package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vims/internal/auth/metrics"
	"vims/internal/auth/models"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	audit "vims/pkg/platform/audit"
	"vims/pkg/platform/sentinel"
	"vims/pkg/requestcontext"
)

// UserStore persists application accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID string) (*models.Session, error)
	Revoke(ctx context.Context, sessionID string) error
}

// TokenIssuer signs access tokens for authenticated sessions.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, sessionID string, expiresIn time.Duration) (string, error)
}

// Auditor records auth events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements register/login/logout and session liveness. Password
// hashes never leave this package.
type Service struct {
	users      UserStore
	sessions   SessionStore
	tokens     TokenIssuer
	auditor    Auditor
	metrics    *metrics.Metrics
	sessionTTL time.Duration
}

func NewService(users UserStore, sessions SessionStore, tokens TokenIssuer, auditor Auditor, m *metrics.Metrics, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		auditor:    auditor,
		metrics:    m,
		sessionTTL: sessionTTL,
	}
}

// RegisterRequest carries a new account's fields.
type RegisterRequest struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	if req.Password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "could not hash password")
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Username:     username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicate, "username already exists")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "could not create user")
	}

	s.metrics.IncUsersRegistered()
	_ = s.auditor.Emit(ctx, audit.Event{
		UserID:  user.ID,
		Action:  string(audit.EventUserRegistered),
		Subject: user.Username,
	})
	return user, nil
}

// LoginResult carries a fresh session token.
type LoginResult struct {
	Token     string
	UserID    id.UserID
	SessionID string
	ExpiresAt time.Time
}

// Login verifies credentials and opens a session. Bad username and bad
// password are deliberately indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		s.metrics.IncLoginAttempt("failure")
		_ = s.auditor.Emit(ctx, audit.Event{Action: string(audit.EventLoginFailed), Subject: username})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.metrics.IncLoginAttempt("failure")
		_ = s.auditor.Emit(ctx, audit.Event{UserID: user.ID, Action: string(audit.EventLoginFailed), Subject: username})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}

	now := requestcontext.Now(ctx)
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "could not create session")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, session.ID, s.sessionTTL)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "could not issue token")
	}

	s.metrics.IncLoginAttempt("success")
	_ = s.auditor.Emit(ctx, audit.Event{UserID: user.ID, Action: string(audit.EventLoginSucceeded), Subject: username})
	return &LoginResult{
		Token:     token,
		UserID:    user.ID,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes the session behind the current token.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Already gone; logout is idempotent.
			return nil
		}
		return dErrors.New(dErrors.CodeInternal, "could not revoke session")
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		UserID: requestcontext.UserID(ctx),
		Action: string(audit.EventLogout),
	})
	return nil
}

// IsSessionLive answers the auth middleware's liveness check.
func (s *Service) IsSessionLive(ctx context.Context, sessionID string) (bool, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return session.Live(requestcontext.Now(ctx)), nil
}
