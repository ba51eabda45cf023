package domain

import (
	"strings"
	"time"
)

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

// IssueStatuses lists every status in display order.
var IssueStatuses = []IssueStatus{IssueStatusOpen, IssueStatusInProgress, IssueStatusClosed}

// ParseIssueStatus matches s against the known statuses case-insensitively.
func ParseIssueStatus(s string) (IssueStatus, bool) {
	for _, status := range IssueStatuses {
		if strings.EqualFold(string(status), strings.TrimSpace(s)) {
			return status, true
		}
	}
	return "", false
}

// Issue is a user-reported work item. It belongs to a user through UserEmail.
type Issue struct {
	ID          int64
	Title       string
	Description string
	Status      IssueStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserEmail   string
}
