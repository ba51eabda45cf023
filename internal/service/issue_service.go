package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/query"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/validation"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// DefaultRecentLimit is how many issues Recent returns when no limit is given.
const DefaultRecentLimit = 8

// IssueService coordinates issue workflows.
type IssueService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
}

// CreateIssueInput describes issue creation payload.
type CreateIssueInput struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
}

// IssuePatch lists the fields to replace; nil fields are left untouched.
type IssuePatch struct {
	Title       *string `json:"title" validate:"omitnil,notblank"`
	Description *string `json:"description" validate:"omitnil,notblank"`
	Status      *string `json:"status"`
}

// Scope selects which issues a read covers. An empty Owner means every issue.
type Scope struct {
	Owner string
}

// AllIssues covers every issue in the store.
func AllIssues() Scope { return Scope{} }

// OwnedBy covers the issues reported by email.
func OwnedBy(email string) Scope { return Scope{Owner: email} }

// Stats summarizes issues by status.
type Stats struct {
	Counts map[domain.IssueStatus]int
	Total  int
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{issues: deps.IssueRepo, dispatcher: deps.Dispatcher}
}

// Create stores a new OPEN issue owned by owner.
func (s *IssueService) Create(ctx context.Context, owner string, in CreateIssueInput) (*domain.Issue, error) {
	if owner == "" {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}
	if err := validation.Struct(in, "invalid issue"); err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      domain.IssueStatusOpen,
		UserEmail:   owner,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventIssueCreated, owner, issue.ID, events.IssueCreatedPayload{
		Title:  issue.Title,
		Status: issue.Status,
	}))
	return issue, nil
}

// ListAll returns every issue, highest id first.
func (s *IssueService) ListAll(ctx context.Context) ([]domain.Issue, error) {
	return s.issues.List(ctx)
}

// ListForUser returns the issues reported by email, newest first.
func (s *IssueService) ListForUser(ctx context.Context, email string) ([]domain.Issue, error) {
	return s.issues.ListByOwner(ctx, email)
}

// Query loads the issues in scope and runs them through the query pipeline.
func (s *IssueService) Query(ctx context.Context, scope Scope, params query.Params) (query.Result, error) {
	issues, err := s.load(ctx, scope)
	if err != nil {
		return query.Result{}, err
	}
	return query.Apply(issues, params), nil
}

// Update applies patch to an issue owned by owner. Issues owned by someone
// else are reported as missing.
func (s *IssueService) Update(ctx context.Context, owner string, id int64, patch IssuePatch) (*domain.Issue, error) {
	check := validation.Check(patch)
	var status domain.IssueStatus
	if patch.Status != nil {
		parsed, ok := domain.ParseIssueStatus(*patch.Status)
		if !ok {
			check.Valid = false
			check.Fields["status"] = "must be one of: OPEN, IN_PROGRESS, CLOSED"
		}
		status = parsed
	}
	if patch.Title == nil && patch.Description == nil && patch.Status == nil {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if err := check.Err("invalid issue update"); err != nil {
		return nil, err
	}

	issue, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	oldStatus := issue.Status
	var changed []string
	if patch.Title != nil {
		issue.Title = strings.TrimSpace(*patch.Title)
		changed = append(changed, "title")
	}
	if patch.Description != nil {
		issue.Description = strings.TrimSpace(*patch.Description)
		changed = append(changed, "description")
	}
	if patch.Status != nil {
		issue.Status = status
		changed = append(changed, "status")
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, issueNotFound(id)
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventIssueUpdated, owner, issue.ID, events.IssueUpdatedPayload{
		OldStatus:     oldStatus,
		NewStatus:     issue.Status,
		ChangedFields: changed,
	}))
	return issue, nil
}

// Delete removes an issue owned by owner and returns it.
func (s *IssueService) Delete(ctx context.Context, owner string, id int64) (*domain.Issue, error) {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return nil, err
	}
	removed, err := s.issues.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, issueNotFound(id)
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventIssueDeleted, owner, removed.ID, events.IssueDeletedPayload{
		Title: removed.Title,
	}))
	return removed, nil
}

// Stats counts the issues in scope per status.
func (s *IssueService) Stats(ctx context.Context, scope Scope) (Stats, error) {
	issues, err := s.load(ctx, scope)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Counts: query.CountByStatus(issues), Total: len(issues)}, nil
}

// Recent returns the n newest issues in scope.
func (s *IssueService) Recent(ctx context.Context, scope Scope, n int) ([]domain.Issue, error) {
	if n <= 0 {
		n = DefaultRecentLimit
	}
	issues, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	return query.Latest(issues, n), nil
}

func (s *IssueService) load(ctx context.Context, scope Scope) ([]domain.Issue, error) {
	if scope.Owner != "" {
		return s.ListForUser(ctx, scope.Owner)
	}
	return s.ListAll(ctx)
}

func (s *IssueService) owned(ctx context.Context, owner string, id int64) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, issueNotFound(id)
		}
		return nil, err
	}
	if owner == "" || !strings.EqualFold(issue.UserEmail, owner) {
		return nil, issueNotFound(id)
	}
	return issue, nil
}

func (s *IssueService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func issueNotFound(id int64) error {
	return apperrors.NewNotFound("issue", map[string]any{"id": id})
}
