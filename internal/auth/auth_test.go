package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)
	require.NoError(t, ComparePassword(hash, "secret1"))
	require.Error(t, ComparePassword(hash, "secret2"))
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("s3cret", time.Hour)
	tok, exp, err := tm.GenerateToken("sid-1", "ann@x.com", time.Time{})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(tok)
	require.NoError(t, err)
	require.Equal(t, "sid-1", claims.SessionID)
	require.Equal(t, "ann@x.com", claims.Email)

	_, err = NewTokenManager("other", time.Hour).ParseToken(tok)
	require.Error(t, err)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("s3cret", time.Hour)

	expired, _, err := tm.GenerateToken("sid", "ann@x.com", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = tm.ParseToken(expired)
	require.Error(t, err)

	noSID := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: "ann@x.com"})
	signed, err := noSID.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(signed)
	require.Error(t, err)

	_, err = tm.ParseToken("garbage")
	require.Error(t, err)
}

func TestCookieCodec(t *testing.T) {
	value, err := EncodeCookie(CookiePayload{SessionID: "abc", Email: "ann@x.com"})
	require.NoError(t, err)
	require.NotContains(t, value, `"`)

	payload, err := DecodeCookie(value)
	require.NoError(t, err)
	require.Equal(t, CookiePayload{SessionID: "abc", Email: "ann@x.com"}, payload)

	payload, err = DecodeCookie(`{"sessionId":"raw","email":"b@x.com"}`)
	require.NoError(t, err)
	require.Equal(t, "raw", payload.SessionID)

	for _, bad := range []string{"", "not-json", `{"email":"a@x.com"}`} {
		_, err := DecodeCookie(bad)
		require.Error(t, err, bad)
	}
}
