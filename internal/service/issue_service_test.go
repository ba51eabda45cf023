package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/query"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

func newIssueFixture(t *testing.T) (*IssueService, *recordingDispatcher) {
	t.Helper()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	repo := repository.NewMemoryIssueRepository().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	dispatcher := &recordingDispatcher{}
	return NewIssueService(IssueDependencies{IssueRepo: repo, Dispatcher: dispatcher}), dispatcher
}

func strPtr(s string) *string { return &s }

func TestCreateIssue(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher := newIssueFixture(t)

	issue, err := svc.Create(ctx, "ann@x.io", CreateIssueInput{Title: " Crash ", Description: "on save"})
	require.NoError(t, err)
	require.Equal(t, "Crash", issue.Title)
	require.Equal(t, domain.IssueStatusOpen, issue.Status)
	require.Equal(t, "ann@x.io", issue.UserEmail)
	require.False(t, issue.CreatedAt.IsZero())
	require.Equal(t, []events.EventType{events.EventIssueCreated}, dispatcher.types())

	_, err = svc.Create(ctx, "ann@x.io", CreateIssueInput{Title: "   ", Description: "x"})
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeValidation, domainErr.Code)
	require.Contains(t, domainErr.Details, "title")

	_, err = svc.Create(ctx, "", CreateIssueInput{Title: "a", Description: "b"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIssueFixture(t)
	for i, owner := range []string{"ann@x.io", "bob@x.io", "ann@x.io"} {
		_, err := svc.Create(ctx, owner, CreateIssueInput{Title: fmt.Sprintf("t%d", i), Description: "d"})
		require.NoError(t, err)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []int64{3, 2, 1}, ids(all))

	mine, err := svc.ListForUser(ctx, "ann@x.io")
	require.NoError(t, err)
	require.Equal(t, []int64{3, 1}, ids(mine))

	none, err := svc.ListForUser(ctx, "zed@x.io")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestQueryPaginatesOwnIssues(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIssueFixture(t)
	for i := 0; i < 10; i++ {
		_, err := svc.Create(ctx, "ann@x.io", CreateIssueInput{Title: fmt.Sprintf("issue %d", i), Description: "d"})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "bob@x.io", CreateIssueInput{Title: "other", Description: "d"})
	require.NoError(t, err)

	for page, want := range map[int]int{1: 6, 2: 4, 3: 0} {
		res, err := svc.Query(ctx, OwnedBy("ann@x.io"), query.Params{Page: page, PageSize: 6})
		require.NoError(t, err)
		require.Len(t, res.Issues, want, "page %d", page)
		require.Equal(t, 10, res.Total)
		require.Equal(t, 2, res.TotalPages)
	}

	res, err := svc.Query(ctx, AllIssues(), query.Params{Text: "OTHER"})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	require.Equal(t, "bob@x.io", res.Issues[0].UserEmail)
}

func TestUpdateIssue(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher := newIssueFixture(t)
	created, err := svc.Create(ctx, "ann@x.io", CreateIssueInput{Title: "Crash", Description: "on save"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "ann@x.io", created.ID, IssuePatch{Status: strPtr("in_progress")})
	require.NoError(t, err)
	require.Equal(t, domain.IssueStatusInProgress, updated.Status)
	require.Equal(t, "Crash", updated.Title)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	updated, err = svc.Update(ctx, "ann@x.io", created.ID, IssuePatch{Title: strPtr("Crash on save"), Description: strPtr("always")})
	require.NoError(t, err)
	require.Equal(t, "Crash on save", updated.Title)
	require.Equal(t, "always", updated.Description)
	require.Equal(t, domain.IssueStatusInProgress, updated.Status)

	last := dispatcher.events[len(dispatcher.events)-1]
	require.Equal(t, events.EventIssueUpdated, last.Type)
	payload := last.Payload.(events.IssueUpdatedPayload)
	require.Equal(t, []string{"title", "description"}, payload.ChangedFields)
}

func TestUpdateIssueRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIssueFixture(t)
	created, err := svc.Create(ctx, "ann@x.io", CreateIssueInput{Title: "Crash", Description: "on save"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		owner string
		id    int64
		patch IssuePatch
		code  string
	}{
		{"blank title", "ann@x.io", created.ID, IssuePatch{Title: strPtr(" ")}, apperrors.CodeValidation},
		{"unknown status", "ann@x.io", created.ID, IssuePatch{Status: strPtr("DONE")}, apperrors.CodeValidation},
		{"empty patch", "ann@x.io", created.ID, IssuePatch{}, apperrors.CodeValidation},
		{"missing issue", "ann@x.io", 404, IssuePatch{Title: strPtr("x")}, apperrors.CodeNotFound},
		{"foreign issue", "bob@x.io", created.ID, IssuePatch{Title: strPtr("x")}, apperrors.CodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tc.owner, tc.id, tc.patch)
			require.True(t, apperrors.IsCode(err, tc.code), "got %v", err)
		})
	}

	unchanged, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Crash", unchanged[0].Title)
}

func TestDeleteIssue(t *testing.T) {
	ctx := context.Background()
	svc, dispatcher := newIssueFixture(t)
	created, err := svc.Create(ctx, "ann@x.io", CreateIssueInput{Title: "Crash", Description: "on save"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "bob@x.io", created.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	removed, err := svc.Delete(ctx, "ann@x.io", created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, removed.ID)
	require.Equal(t, "Crash", removed.Title)

	_, err = svc.Delete(ctx, "ann@x.io", created.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	require.Equal(t, []events.EventType{events.EventIssueCreated, events.EventIssueDeleted}, dispatcher.types())
}

func TestStatsAndRecent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIssueFixture(t)
	for i := 0; i < 10; i++ {
		owner := "ann@x.io"
		if i%2 == 1 {
			owner = "bob@x.io"
		}
		_, err := svc.Create(ctx, owner, CreateIssueInput{Title: fmt.Sprintf("t%d", i), Description: "d"})
		require.NoError(t, err)
	}
	_, err := svc.Update(ctx, "ann@x.io", 1, IssuePatch{Status: strPtr("CLOSED")})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, AllIssues())
	require.NoError(t, err)
	require.Equal(t, 10, stats.Total)
	require.Equal(t, 9, stats.Counts[domain.IssueStatusOpen])
	require.Equal(t, 1, stats.Counts[domain.IssueStatusClosed])
	require.Equal(t, 0, stats.Counts[domain.IssueStatusInProgress])

	mine, err := svc.Stats(ctx, OwnedBy("bob@x.io"))
	require.NoError(t, err)
	require.Equal(t, 5, mine.Total)

	recent, err := svc.Recent(ctx, AllIssues(), 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	require.Equal(t, int64(10), recent[0].ID)

	recent, err = svc.Recent(ctx, OwnedBy("ann@x.io"), 2)
	require.NoError(t, err)
	require.Equal(t, []int64{9, 7}, ids(recent))
}

func ids(issues []domain.Issue) []int64 {
	out := make([]int64, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.ID)
	}
	return out
}
