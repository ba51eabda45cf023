package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/session"
	"github.com/spec-kit/issue-tracker/internal/validation"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

const invalidCredentialsMessage = "Invalid email or password"

// AuthService coordinates registration, login and session lookups.
type AuthService struct {
	users      repository.UserRepository
	sessions   session.Store
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	sessionTTL time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   session.Store
	Dispatcher events.Dispatcher
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Username       string  `json:"username" validate:"notblank"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	FullName       string  `json:"fullName" validate:"notblank"`
	ProfilePicture *string `json:"profilePicture"`
	Role           string  `json:"role" validate:"omitempty,oneof=admin developer tester"`
	Status         string  `json:"status" validate:"omitempty,oneof=active inactive banned"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is everything a transport needs to hand a new session to the client.
type LoginResult struct {
	Session     *domain.Session
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

// Profile is the caller's account as shown on the profile page.
type Profile struct {
	User     *domain.User
	Initials string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	ttl := cfg.Session.TTL()
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, ttl),
		bcryptCost: cfg.Auth.BcryptCost,
		sessionTTL: ttl,
		now:        time.Now,
	}
}

// Register creates a new account and stores only the password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if err := validation.Struct(in, "invalid registration"); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, emailTaken(in.Email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:       strings.TrimSpace(in.Username),
		Email:          in.Email,
		PasswordHash:   hash,
		FullName:       strings.TrimSpace(in.FullName),
		ProfilePicture: in.ProfilePicture,
		Role:           domain.UserRoleDeveloper,
		Status:         domain.UserStatusActive,
	}
	if in.Role != "" {
		user.Role = domain.UserRole(in.Role)
	}
	if in.Status != "" {
		user.Status = domain.UserStatus(in.Status)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, emailTaken(in.Email)
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventUserRegistered, user.Email, 0, events.UserRegisteredPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}))
	return user, nil
}

// Login verifies credentials and opens a session in the registry.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in, "invalid login"); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized(invalidCredentialsMessage)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, in.Password); err != nil {
		return nil, apperrors.NewUnauthorized(invalidCredentialsMessage)
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account is " + string(user.Status))
	}

	now := s.now()
	sess := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(sess.Token, sess.Email, sess.ExpiresAt)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Session: sess, User: user, AccessToken: token, ExpiresAt: exp}, nil
}

// CheckSession returns the live session registered under token.
func (s *AuthService) CheckSession(ctx context.Context, token string) (*domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("session expired or revoked")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if sess.Expired(s.now()) {
		return nil, apperrors.NewUnauthorized("session expired or revoked")
	}
	return sess, nil
}

// ResolveCookie authenticates the value of the session cookie.
func (s *AuthService) ResolveCookie(ctx context.Context, value string) (*domain.Session, error) {
	payload, err := auth.DecodeCookie(value)
	if err != nil {
		return nil, apperrors.NewUnauthorized("malformed session cookie")
	}
	return s.resolve(ctx, payload.SessionID, payload.Email)
}

// ResolveBearer authenticates a bearer access token.
func (s *AuthService) ResolveBearer(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return s.resolve(ctx, claims.SessionID, claims.Email)
}

func (s *AuthService) resolve(ctx context.Context, token, email string) (*domain.Session, error) {
	sess, err := s.CheckSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(sess.Email, email) {
		return nil, apperrors.NewUnauthorized("session does not match credentials")
	}
	return sess, nil
}

// Logout removes the session from the registry. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Profile loads the account behind an authenticated session.
func (s *AuthService) Profile(ctx context.Context, sess *domain.Session) (*Profile, error) {
	if sess == nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": sess.UserID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &Profile{User: user, Initials: user.Initials()}, nil
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// SessionTTL is the lifetime given to new sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func emailTaken(email string) error {
	return apperrors.NewConflict("email already registered", map[string]any{"email": email})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
