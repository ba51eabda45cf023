package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventIssueCreated   EventType = "issue_created"
	EventIssueUpdated   EventType = "issue_updated"
	EventIssueDeleted   EventType = "issue_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   int64       `json:"issue_id,omitempty"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, actor string, issueID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		IssueID:   issueID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Role     domain.UserRole `json:"role"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title  string             `json:"title"`
	Status domain.IssueStatus `json:"status"`
}

// IssueUpdatedPayload payload.
type IssueUpdatedPayload struct {
	OldStatus     domain.IssueStatus `json:"old_status"`
	NewStatus     domain.IssueStatus `json:"new_status"`
	ChangedFields []string           `json:"changed_fields"`
}

// IssueDeletedPayload payload.
type IssueDeletedPayload struct {
	Title string `json:"title"`
}
