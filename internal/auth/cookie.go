package auth

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookiePayload is the JSON document stored in the session cookie.
type CookiePayload struct {
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
}

var errMalformedCookie = errors.New("malformed session cookie")

// EncodeCookie serializes the payload into a cookie-safe value.
func EncodeCookie(p CookiePayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(raw)), nil
}

// DecodeCookie reverses EncodeCookie. Unescaped JSON is accepted too.
func DecodeCookie(value string) (CookiePayload, error) {
	var p CookiePayload
	value = strings.TrimSpace(value)
	if value == "" {
		return p, errMalformedCookie
	}
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return p, errMalformedCookie
	}
	if p.SessionID == "" {
		return p, errMalformedCookie
	}
	return p, nil
}

// DefaultCookieName is used when no session cookie name is configured.
const DefaultCookieName = "session"

// SessionCookie builds the cookie handed out at login.
func SessionCookie(name, value string, maxAge time.Duration, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// ExpiredSessionCookie overwrites the session cookie with an empty, already expired value.
func ExpiredSessionCookie(name string, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
