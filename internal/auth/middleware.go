package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	UserID    int64
	Email     string
	SessionID string
}

// SessionResolver turns client credentials into a live registry session.
type SessionResolver interface {
	ResolveCookie(ctx context.Context, value string) (*domain.Session, error)
	ResolveBearer(ctx context.Context, token string) (*domain.Session, error)
}

// AuthMiddleware authenticates requests by bearer token or session cookie.
type AuthMiddleware struct {
	sessions   SessionResolver
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions SessionResolver, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{sessions: sessions, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.Authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Authenticate resolves the caller without touching the handler chain.
// An Authorization header takes precedence over the cookie.
func (m *AuthMiddleware) Authenticate(c *fiber.Ctx) (*Principal, error) {
	var (
		sess *domain.Session
		err  error
	)
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, apperrors.NewUnauthorized("invalid authorization header")
		}
		sess, err = m.sessions.ResolveBearer(c.UserContext(), strings.TrimSpace(parts[1]))
	} else if cookie := c.Cookies(m.cookieName); cookie != "" {
		sess, err = m.sessions.ResolveCookie(c.UserContext(), cookie)
	} else {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: sess.UserID, Email: sess.Email, SessionID: sess.Token}, nil
}

// CookieName is the name of the session cookie this middleware reads.
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
