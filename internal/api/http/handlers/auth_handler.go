package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth          *service.AuthService
	authenticator *auth.AuthMiddleware
	secureCookies bool
}

// NewAuthHandler constructs handler. secureCookies marks the session cookie Secure.
func NewAuthHandler(authService *service.AuthService, authenticator *auth.AuthMiddleware, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: authService, authenticator: authenticator, secureCookies: secureCookies}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Login handles POST /login and sets the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	res, err := h.auth.Login(c.UserContext(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}

	value, err := auth.EncodeCookie(auth.CookiePayload{SessionID: res.Session.Token, Email: res.Session.Email})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Cookie(auth.SessionCookie(h.authenticator.CookieName(), value, h.auth.SessionTTL(), h.secureCookies))

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(res.User),
			"auth": dto.AuthResponse{Token: res.AccessToken, ExpiresAt: res.ExpiresAt},
		},
	})
}

// Logout handles POST /logout. It always clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if principal, err := h.authenticator.Authenticate(c); err == nil {
		if err := h.auth.Logout(c.UserContext(), principal.SessionID); err != nil {
			return err
		}
	}
	c.Cookie(auth.ExpiredSessionCookie(h.authenticator.CookieName(), h.secureCookies))
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Session handles GET /session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	principal, err := h.authenticator.Authenticate(c)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUnauthorized) {
			return c.Status(http.StatusUnauthorized).JSON(dto.SessionResponse{Authenticated: false})
		}
		return err
	}
	return c.JSON(dto.SessionResponse{
		Authenticated: true,
		User:          &dto.SessionUser{UserID: principal.UserID, Email: principal.Email},
	})
}

// Profile handles GET /user.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	profile, err := h.auth.Profile(c.UserContext(), &domain.Session{
		Token:  principal.SessionID,
		UserID: principal.UserID,
		Email:  principal.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}
