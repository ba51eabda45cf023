package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/query"
	"github.com/spec-kit/issue-tracker/internal/service"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateIssueRequest payload. Omitted fields keep their value.
type UpdateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Patch converts the request into a service patch.
func (r UpdateIssueRequest) Patch() service.IssuePatch {
	return service.IssuePatch{Title: r.Title, Description: r.Description, Status: r.Status}
}

// IssueResponse is the wire form of an issue.
type IssueResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      domain.IssueStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	UserEmail   string             `json:"userEmail"`
}

// ListMeta describes the page returned by a list endpoint.
type ListMeta struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

// StatsResponse counts issues per status.
type StatsResponse struct {
	Counts map[domain.IssueStatus]int `json:"counts"`
	Total  int                        `json:"total"`
}

// NewIssueResponse maps a domain issue.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
		UserEmail:   issue.UserEmail,
	}
}

// NewIssueList maps a slice of issues, never returning nil.
func NewIssueList(issues []domain.Issue) []IssueResponse {
	items := make([]IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, NewIssueResponse(&issues[i]))
	}
	return items
}

// NewListMeta maps a pipeline result.
func NewListMeta(res query.Result) ListMeta {
	return ListMeta{Total: res.Total, TotalPages: res.TotalPages, Page: res.Page, PageSize: res.PageSize}
}

// NewStatsResponse maps service stats.
func NewStatsResponse(s service.Stats) StatsResponse {
	return StatsResponse{Counts: s.Counts, Total: s.Total}
}
