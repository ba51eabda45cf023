// Package session holds the session registry: the mapping from opaque
// session tokens to the identity they were issued for.
package session

import (
	"context"
	"errors"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ErrNotFound is returned when a token is unknown or its session expired.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by token. Put overwrites an existing entry;
// Delete of an unknown token is not an error.
type Store interface {
	Get(ctx context.Context, token string) (*domain.Session, error)
	Put(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, token string) error
}

// Sweeper is implemented by stores that must purge expired entries themselves.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}
