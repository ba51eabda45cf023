package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{"wrapped domain error", fmt.Errorf("wrap: %w", NewNotFound("issue", nil)), CodeNotFound, http.StatusNotFound},
		{"fiber error", fiber.NewError(http.StatusUnauthorized, "nope"), CodeUnauthorized, http.StatusUnauthorized},
		{"fiber route miss", fiber.ErrNotFound, CodeNotFound, http.StatusNotFound},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, CodeConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			require.Equal(t, tc.code, de.Code)
			require.Equal(t, tc.status, de.HTTPStatus)
		})
	}

	require.Nil(t, ToDomainError(nil))
	require.NoError(t, MapError(nil))
}

func TestDomainErrorMessage(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)
	require.EqualError(t, err, "internal server error: connection reset")
	require.ErrorIs(t, err, cause)

	require.EqualError(t, NewNotFound("issue", nil), "issue not found")
	require.True(t, IsCode(NewUnauthorized("x"), CodeUnauthorized))
	require.False(t, IsCode(nil, CodeUnauthorized))
}
