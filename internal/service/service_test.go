package service

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/session"
)

func testConfig() config.Config {
	return config.Config{
		Auth:    config.AuthConfig{JWTSecret: "test-secret", BcryptCost: 4},
		Session: config.SessionConfig{TTLHours: 1},
	}
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

// stubStore lets a test replace individual session store calls.
type stubStore struct {
	session.Store
	PutFn    func(ctx context.Context, s *domain.Session) error
	DeleteFn func(ctx context.Context, token string) error
}

func (s *stubStore) Put(ctx context.Context, sess *domain.Session) error {
	if s.PutFn != nil {
		return s.PutFn(ctx, sess)
	}
	return s.Store.Put(ctx, sess)
}

func (s *stubStore) Delete(ctx context.Context, token string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, token)
	}
	return s.Store.Delete(ctx, token)
}

type authFixture struct {
	svc        *AuthService
	users      *repository.MemoryUserRepository
	sessions   *session.MemoryStore
	dispatcher *recordingDispatcher
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	f := authFixture{
		users:      repository.NewMemoryUserRepository(),
		sessions:   session.NewMemoryStore(),
		dispatcher: &recordingDispatcher{},
	}
	f.svc = NewAuthService(testConfig(), AuthDependencies{
		UserRepo:   f.users,
		Sessions:   f.sessions,
		Dispatcher: f.dispatcher,
	})
	return f
}

func annInput() RegisterInput {
	return RegisterInput{
		Username: "ann",
		Email:    "ann@x.io",
		Password: "secret1",
		FullName: "Ann Lee",
	}
}
