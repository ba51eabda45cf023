package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	in := annInput()
	in.Email = "  Ann@X.io "
	user, err := f.svc.Register(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "ann@x.io", user.Email)
	require.Equal(t, domain.UserRoleDeveloper, user.Role)
	require.Equal(t, domain.UserStatusActive, user.Status)
	require.NotEqual(t, "secret1", user.PasswordHash)
	require.NoError(t, auth.ComparePassword(user.PasswordHash, "secret1"))
	require.Equal(t, []events.EventType{events.EventUserRegistered}, f.dispatcher.types())

	stored, err := f.users.GetByEmail(ctx, "ann@x.io")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.PasswordHash)

	_, err = f.svc.Register(ctx, annInput())
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name  string
		edit  func(*RegisterInput)
		field string
	}{
		{"blank username", func(in *RegisterInput) { in.Username = "  " }, "username"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, "password"},
		{"blank full name", func(in *RegisterInput) { in.FullName = "" }, "fullName"},
		{"unknown role", func(in *RegisterInput) { in.Role = "manager" }, "role"},
		{"unknown status", func(in *RegisterInput) { in.Status = "gone" }, "status"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := annInput()
			tc.edit(&in)
			_, err := f.svc.Register(context.Background(), in)
			domainErr := apperrors.ToDomainError(err)
			require.Equal(t, apperrors.CodeValidation, domainErr.Code)
			require.Contains(t, domainErr.Details, tc.field)
		})
	}
}

func TestRegisterWithRoleAndStatus(t *testing.T) {
	f := newAuthFixture(t)
	in := annInput()
	in.Role = "Tester"
	in.Status = "inactive"
	user, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, domain.UserRoleTester, user.Role)
	require.Equal(t, domain.UserStatusInactive, user.Status)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.svc.Register(ctx, annInput())
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, LoginInput{Email: "ANN@x.io", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Session.Token)
	require.Equal(t, "ann@x.io", res.Session.Email)
	require.Equal(t, res.User.ID, res.Session.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, 5*time.Second)
	require.Equal(t, 1, f.sessions.Len())

	claims, err := f.svc.TokenManager().ParseToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.Session.Token, claims.SessionID)

	sess, err := f.svc.CheckSession(ctx, res.Session.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, sess.UserID)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.svc.Register(ctx, annInput())
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, LoginInput{Email: "ann@x.io", Password: "nope-nope"})
	_, unknownEmail := f.svc.Login(ctx, LoginInput{Email: "bob@x.io", Password: "secret1"})

	for _, err := range []error{wrongPassword, unknownEmail} {
		domainErr := apperrors.ToDomainError(err)
		require.Equal(t, apperrors.CodeUnauthorized, domainErr.Code)
		require.Equal(t, "Invalid email or password", domainErr.Message)
	}
	require.Equal(t, 0, f.sessions.Len())

	_, err = f.svc.Login(ctx, LoginInput{Email: "", Password: ""})
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestLoginRefusesInactiveAccounts(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	in := annInput()
	in.Status = "banned"
	_, err := f.svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginInput{Email: "ann@x.io", Password: "secret1"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.svc.Login(ctx, LoginInput{Email: "ann@x.io", Password: "wrong-pass"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestLoginStoreFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.svc.Register(ctx, annInput())
	require.NoError(t, err)

	f.svc.sessions = &stubStore{Store: f.sessions, PutFn: func(context.Context, *domain.Session) error {
		return errors.New("redis down")
	}}
	_, err = f.svc.Login(ctx, LoginInput{Email: "ann@x.io", Password: "secret1"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.svc.Register(ctx, annInput())
	require.NoError(t, err)
	res, err := f.svc.Login(ctx, LoginInput{Email: "ann@x.io", Password: "secret1"})
	require.NoError(t, err)

	cookie, err := auth.EncodeCookie(auth.CookiePayload{SessionID: res.Session.Token, Email: res.Session.Email})
	require.NoError(t, err)
	_, err = f.svc.ResolveCookie(ctx, cookie)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, res.Session.Token))
	require.NoError(t, f.svc.Logout(ctx, res.Session.Token))
	require.NoError(t, f.svc.Logout(ctx, ""))

	_, err = f.svc.ResolveCookie(ctx, cookie)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, err = f.svc.ResolveBearer(ctx, res.AccessToken)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestResolveRejectsForgedCredentials(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.svc.Register(ctx, annInput())
	require.NoError(t, err)
	res, err := f.svc.Login(ctx, LoginInput{Email: "ann@x.io", Password: "secret1"})
	require.NoError(t, err)

	forged, err := auth.EncodeCookie(auth.CookiePayload{SessionID: res.Session.Token, Email: "mallory@x.io"})
	require.NoError(t, err)
	_, err = f.svc.ResolveCookie(ctx, forged)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	invented, err := auth.EncodeCookie(auth.CookiePayload{SessionID: "made-up", Email: "ann@x.io"})
	require.NoError(t, err)
	_, err = f.svc.ResolveCookie(ctx, invented)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = f.svc.ResolveCookie(ctx, "%%%garbage")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = f.svc.ResolveBearer(ctx, "not.a.jwt")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	sess, err := f.svc.ResolveBearer(ctx, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "ann@x.io", sess.Email)
}

func TestCheckSessionExpiry(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.svc.Register(ctx, annInput())
	require.NoError(t, err)
	res, err := f.svc.Login(ctx, LoginInput{Email: "ann@x.io", Password: "secret1"})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = f.svc.CheckSession(ctx, res.Session.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = f.svc.CheckSession(ctx, "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	user, err := f.svc.Register(ctx, annInput())
	require.NoError(t, err)

	profile, err := f.svc.Profile(ctx, &domain.Session{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	require.Equal(t, "AL", profile.Initials)
	require.Equal(t, "ann", profile.User.Username)

	_, err = f.svc.Profile(ctx, &domain.Session{UserID: 999})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Profile(ctx, nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}
