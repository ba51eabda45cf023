package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/query"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// DefaultPageSize applies when a page is requested without a page size.
const DefaultPageSize = 6

// IssuesHandler manages issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// ListAll GET /issues.
func (h *IssuesHandler) ListAll(c *fiber.Ctx) error {
	return h.list(c, service.AllIssues())
}

// ListMine GET /issues/user.
func (h *IssuesHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return h.list(c, service.OwnedBy(principal.Email))
}

func (h *IssuesHandler) list(c *fiber.Ctx, scope service.Scope) error {
	params, err := parseListQuery(c)
	if err != nil {
		return err
	}
	res, err := h.service.Query(c.UserContext(), scope, params)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewIssueList(res.Issues),
		"meta": dto.NewListMeta(res),
	})
}

// Create POST /issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.Create(c.UserContext(), principal.Email, service.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewIssueResponse(issue)})
}

// Update PUT /issues/user?id=.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	id, err := parseIssueID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.Update(c.UserContext(), principal.Email, id, req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIssueResponse(issue)})
}

// Delete DELETE /issues/user?id=.
func (h *IssuesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	id, err := parseIssueID(c)
	if err != nil {
		return err
	}

	issue, err := h.service.Delete(c.UserContext(), principal.Email, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIssueResponse(issue)})
}

// Stats GET /issues/stats.
func (h *IssuesHandler) Stats(c *fiber.Ctx) error {
	scope, err := parseScope(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.UserContext(), scope)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatsResponse(stats)})
}

// Recent GET /issues/recent.
func (h *IssuesHandler) Recent(c *fiber.Ctx) error {
	scope, err := parseScope(c)
	if err != nil {
		return err
	}
	limit := service.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return apperrors.NewValidationError("invalid query", map[string]any{"limit": "must be a positive integer"})
		}
		limit = n
	}
	issues, err := h.service.Recent(c.UserContext(), scope, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIssueList(issues)})
}

func parseScope(c *fiber.Ctx) (service.Scope, error) {
	switch strings.ToLower(c.Query("scope")) {
	case "", "all":
		return service.AllIssues(), nil
	case "user":
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return service.Scope{}, apperrors.NewUnauthorized("not authenticated")
		}
		return service.OwnedBy(principal.Email), nil
	}
	return service.Scope{}, apperrors.NewValidationError("invalid query", map[string]any{"scope": "must be one of: all, user"})
}

func parseIssueID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NewValidationError("invalid issue id", map[string]any{"id": "must be a positive integer"})
	}
	return id, nil
}

func parseListQuery(c *fiber.Ctx) (query.Params, error) {
	details := map[string]any{}
	params := query.Params{Text: strings.TrimSpace(c.Query("q"))}

	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseIssueStatus(raw)
		if !ok {
			details["status"] = "must be one of: OPEN, IN_PROGRESS, CLOSED"
		}
		params.Status = string(status)
	}

	key, ok := query.ParseSortKey(c.Query("sort"))
	if !ok {
		details["sort"] = "must be one of: title, createdAt"
	}
	direction, ok := query.ParseDirection(c.Query("direction"))
	if !ok {
		details["direction"] = "must be one of: asc, desc"
	}
	params.Sort = query.Sort{Key: key, Direction: direction}

	page, pageOK := positiveQueryInt(c, "page")
	if !pageOK {
		details["page"] = "must be a positive integer"
	}
	pageSize, sizeOK := positiveQueryInt(c, "page_size")
	if !sizeOK {
		details["page_size"] = "must be a positive integer"
	}
	if page > 0 && pageSize == 0 {
		pageSize = DefaultPageSize
	}
	params.Page = page
	params.PageSize = pageSize

	if len(details) > 0 {
		return query.Params{}, apperrors.NewValidationError("invalid query", details)
	}
	return params, nil
}

// positiveQueryInt returns 0 when the parameter is absent.
func positiveQueryInt(c *fiber.Ctx, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
