// Package query reshapes issue collections for display: text and status
// filtering, ordering and pagination, plus the dashboard aggregates.
// Every function here is pure and leaves its input slice untouched.
package query

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// SortKey names the issue field used for ordering.
type SortKey string

const (
	SortNone      SortKey = ""
	SortTitle     SortKey = "title"
	SortCreatedAt SortKey = "createdAt"
)

// Direction is the ordering direction.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Sort selects an ordering. The zero value keeps input order.
type Sort struct {
	Key       SortKey
	Direction Direction
}

// Params are the pipeline inputs besides the issues themselves.
// A PageSize of zero or less disables pagination.
type Params struct {
	Text     string
	Status   string
	Sort     Sort
	Page     int
	PageSize int
}

// Result is the visible page plus the numbers needed to render a pager.
type Result struct {
	Issues     []domain.Issue
	Total      int
	TotalPages int
	Page       int
	PageSize   int
}

// ParseSortKey accepts the wire names of the sortable fields.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortNone, true
	case "title":
		return SortTitle, true
	case "createdat", "created_at":
		return SortCreatedAt, true
	}
	return SortNone, false
}

// ParseDirection accepts asc/ascending and desc/descending; empty means ascending.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	}
	return "", false
}

// Apply filters, sorts and paginates issues.
func Apply(issues []domain.Issue, p Params) Result {
	visible := Filter(issues, p.Text, p.Status)
	visible = SortIssues(visible, p.Sort)

	res := Result{Total: len(visible), Page: p.Page, PageSize: p.PageSize}
	if res.Page < 1 {
		res.Page = 1
	}

	if p.PageSize <= 0 {
		res.PageSize = 0
		res.Issues = visible
		if len(visible) > 0 {
			res.TotalPages = 1
		}
		return res
	}

	res.TotalPages = pageCount(len(visible), p.PageSize)
	res.Issues = Paginate(visible, res.Page, p.PageSize)
	return res
}

// Filter keeps issues matching the free text and the status. Either may be empty.
func Filter(issues []domain.Issue, text, status string) []domain.Issue {
	needle := strings.ToLower(text)
	out := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if needle != "" && !matchesText(issue, needle) {
			continue
		}
		if status != "" && !strings.EqualFold(string(issue.Status), status) {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// SortIssues returns a stably sorted copy. Equal keys keep their input order
// in both directions.
func SortIssues(issues []domain.Issue, s Sort) []domain.Issue {
	out := slices.Clone(issues)
	if out == nil {
		out = []domain.Issue{}
	}
	cmp := comparator(s.Key)
	if cmp == nil {
		return out
	}
	sign := 1
	if s.Direction == Descending {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b domain.Issue) int {
		return sign * cmp(a, b)
	})
	return out
}

// Paginate returns the 1-based page of size pageSize. Pages past the end are empty.
func Paginate(issues []domain.Issue, page, pageSize int) []domain.Issue {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return issues
	}
	if page > pageCount(len(issues), pageSize) {
		return []domain.Issue{}
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(issues)-start)
	return issues[start:end]
}

// pageCount is ceil(total/pageSize) without overflowing on huge page sizes.
func pageCount(total, pageSize int) int {
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// CountByStatus counts issues per status. Every known status is present.
func CountByStatus(issues []domain.Issue) map[domain.IssueStatus]int {
	counts := make(map[domain.IssueStatus]int, len(domain.IssueStatuses))
	for _, status := range domain.IssueStatuses {
		counts[status] = 0
	}
	for _, issue := range issues {
		counts[issue.Status]++
	}
	return counts
}

// Latest returns the n most recently created issues, newest first.
func Latest(issues []domain.Issue, n int) []domain.Issue {
	if n <= 0 {
		return []domain.Issue{}
	}
	sorted := SortIssues(issues, Sort{Key: SortCreatedAt, Direction: Descending})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func comparator(key SortKey) func(a, b domain.Issue) int {
	switch key {
	case SortTitle:
		col := collate.New(language.Und, collate.IgnoreCase)
		return func(a, b domain.Issue) int {
			return col.CompareString(a.Title, b.Title)
		}
	case SortCreatedAt:
		return func(a, b domain.Issue) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	return nil
}

func matchesText(issue domain.Issue, needle string) bool {
	fields := [...]string{
		strconv.FormatInt(issue.ID, 10),
		issue.Title,
		issue.Description,
		string(issue.Status),
		formatTime(issue.CreatedAt),
		formatTime(issue.UpdatedAt),
		issue.UserEmail,
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
