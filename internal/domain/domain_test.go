package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUserInitials(t *testing.T) {
	require.Equal(t, "AA", (&User{FullName: "Ann A"}).Initials())
	require.Equal(t, "JRT", (&User{FullName: "  jane  r. tolkien "}).Initials())
	require.Equal(t, "", (&User{}).Initials())
}

func TestParseIssueStatus(t *testing.T) {
	status, ok := ParseIssueStatus("in_progress")
	require.True(t, ok)
	require.Equal(t, IssueStatusInProgress, status)

	_, ok = ParseIssueStatus("DONE")
	require.False(t, ok)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	require.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	require.True(t, (&Session{ExpiresAt: now}).Expired(now))
	require.False(t, (&Session{}).Expired(now))
}
