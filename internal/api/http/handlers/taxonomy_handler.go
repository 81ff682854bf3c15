package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/service"
)

// TaxonomyHandler exposes department and issue type endpoints.
type TaxonomyHandler struct {
	taxonomy *service.TaxonomyService
}

// NewTaxonomyHandler constructs handler.
func NewTaxonomyHandler(taxonomy *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

// CreateDepartment handles POST /departments.
func (h *TaxonomyHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.CreateDepartmentInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	dept, err := h.taxonomy.CreateDepartment(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}

// ListDepartments handles GET /departments.
func (h *TaxonomyHandler) ListDepartments(c *fiber.Ctx) error {
	includeInactive, err := parseBoolQuery(c, "include_inactive", false)
	if err != nil {
		return err
	}
	depts, err := h.taxonomy.ListDepartments(c.UserContext(), includeInactive)
	if err != nil {
		return err
	}
	resp := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		resp = append(resp, departmentResponse(&depts[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetDepartment handles GET /departments/:id.
func (h *TaxonomyHandler) GetDepartment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dept, err := h.taxonomy.GetDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// UpdateDepartment handles PATCH /departments/:id.
func (h *TaxonomyHandler) UpdateDepartment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DepartmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dept, err := h.taxonomy.UpdateDepartment(c.UserContext(), id, service.UpdateDepartmentInput{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// CreateIssueType handles POST /issue-types.
func (h *TaxonomyHandler) CreateIssueType(c *fiber.Ctx) error {
	var req dto.CreateIssueTypeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	issueType, err := h.taxonomy.CreateIssueType(c.UserContext(), service.CreateIssueTypeInput{
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueTypeResponse(issueType)})
}

// ListIssueTypes handles GET /issue-types.
func (h *TaxonomyHandler) ListIssueTypes(c *fiber.Ctx) error {
	deptID, err := parseInt64Query(c, "department_id")
	if err != nil {
		return err
	}
	includeInactive, err := parseBoolQuery(c, "include_inactive", false)
	if err != nil {
		return err
	}
	issueTypes, err := h.taxonomy.ListIssueTypes(c.UserContext(), repository.IssueTypeFilter{
		DepartmentID:    deptID,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return err
	}
	resp := make([]dto.IssueTypeResponse, 0, len(issueTypes))
	for i := range issueTypes {
		resp = append(resp, issueTypeResponse(&issueTypes[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetIssueType handles GET /issue-types/:id.
func (h *TaxonomyHandler) GetIssueType(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	issueType, err := h.taxonomy.GetIssueType(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueTypeResponse(issueType)})
}

// UpdateIssueType handles PATCH /issue-types/:id.
func (h *TaxonomyHandler) UpdateIssueType(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateIssueTypeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	issueType, err := h.taxonomy.UpdateIssueType(c.UserContext(), id, service.UpdateIssueTypeInput{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueTypeResponse(issueType)})
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:        dept.ID,
		Name:      dept.Name,
		IsActive:  dept.IsActive,
		CreatedAt: dept.CreatedAt,
	}
}

func issueTypeResponse(it *domain.IssueType) dto.IssueTypeResponse {
	return dto.IssueTypeResponse{
		ID:           it.ID,
		Name:         it.Name,
		DepartmentID: it.DepartmentID,
		IsActive:     it.IsActive,
		CreatedAt:    it.CreatedAt,
	}
}
