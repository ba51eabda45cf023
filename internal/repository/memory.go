package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

var (
	_ UserRepository  = (*MemoryUserRepository)(nil)
	_ IssueRepository = (*MemoryIssueRepository)(nil)
)

// MemoryUserRepository is a process-local UserRepository used when no
// database is configured and in tests.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
	now    func() time.Time
}

// NewMemoryUserRepository returns an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]domain.User), now: time.Now}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	r.nextID++
	now := r.now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryIssueRepository is a process-local IssueRepository.
type MemoryIssueRepository struct {
	mu     sync.RWMutex
	nextID int64
	issues map[int64]domain.Issue
	now    func() time.Time
}

// NewMemoryIssueRepository returns an empty repository.
func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{issues: make(map[int64]domain.Issue), now: time.Now}
}

// WithClock overrides the timestamp source.
func (r *MemoryIssueRepository) WithClock(now func() time.Time) *MemoryIssueRepository {
	r.now = now
	return r
}

func (r *MemoryIssueRepository) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now()
	issue.ID = r.nextID
	issue.CreatedAt = now
	issue.UpdatedAt = now
	r.issues[issue.ID] = *issue
	return nil
}

func (r *MemoryIssueRepository) Update(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.issues[issue.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = issue.Title
	existing.Description = issue.Description
	existing.Status = issue.Status
	existing.UpdatedAt = r.now()
	r.issues[issue.ID] = existing
	issue.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *MemoryIssueRepository) GetByID(_ context.Context, id int64) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &issue, nil
}

func (r *MemoryIssueRepository) List(_ context.Context) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Issue, 0, len(r.issues))
	for _, issue := range r.issues {
		out = append(out, issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryIssueRepository) ListByOwner(_ context.Context, email string) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Issue{}
	for _, issue := range r.issues {
		if strings.EqualFold(issue.UserEmail, email) {
			out = append(out, issue)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryIssueRepository) Delete(_ context.Context, id int64) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.issues, id)
	return &issue, nil
}
