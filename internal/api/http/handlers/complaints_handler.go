package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/service"
)

// ComplaintsHandler exposes complaint endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints}
}

// Submit handles POST /complaints.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.Submit(c.UserContext(), service.SubmitComplaintInput{
		UserID:      req.UserID,
		IssueTypeID: req.IssueTypeID,
		Description: req.Description,
		Address:     req.Address,
		Status:      req.Status,
		Urgency:     req.Urgency,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// List handles GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	userID, err := parseInt64Query(c, "user_id")
	if err != nil {
		return err
	}
	issueTypeID, err := parseInt64Query(c, "issue_type_id")
	if err != nil {
		return err
	}
	page, err := parseIntQuery(c, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := parseIntQuery(c, "page_size", service.DefaultPageSize)
	if err != nil {
		return err
	}

	result, err := h.complaints.List(c.UserContext(), service.ComplaintListInput{
		UserID:      userID,
		IssueTypeID: issueTypeID,
		Statuses:    parseListQuery(c, "status"),
		Urgencies:   parseListQuery(c, "urgency"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		return err
	}

	resp := make([]dto.ComplaintResponse, 0, len(result.Items))
	for i := range result.Items {
		resp = append(resp, complaintResponse(&result.Items[i]))
	}
	pages := result.Pages()
	return c.JSON(fiber.Map{
		"data": resp,
		"pagination": dto.Pagination{
			Page:     result.Page,
			PageSize: result.PageSize,
			Total:    result.Total,
			Pages:    pages,
			HasNext:  result.Page < pages,
			HasPrev:  result.Page > 1,
		},
	})
}

// Get handles GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	complaint, err := h.complaints.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// Update handles PATCH /complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.Update(c.UserContext(), id, service.UpdateComplaintInput{
		Status:     req.Status,
		Urgency:    req.Urgency,
		AssignedTo: req.AssignedTo,
		ChangedBy:  req.ChangedBy,
		Comment:    req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// History handles GET /complaints/:id/history.
func (h *ComplaintsHandler) History(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.complaints.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	resp := make([]dto.ComplaintHistoryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.ComplaintHistoryResponse{
			ID:          e.ID,
			ComplaintID: e.ComplaintID,
			OldStatus:   e.OldStatus,
			NewStatus:   e.NewStatus,
			ChangedBy:   e.ChangedBy,
			Comment:     e.Comment,
			ChangedAt:   e.ChangedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

func complaintResponse(complaint *domain.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:          complaint.ID,
		UserID:      complaint.UserID,
		IssueTypeID: complaint.IssueTypeID,
		Description: complaint.Description,
		Address:     complaint.Address,
		Status:      complaint.Status,
		Urgency:     complaint.Urgency,
		Department:  complaint.Department,
		AssignedTo:  complaint.AssignedTo,
		AssignedAt:  complaint.AssignedAt,
		CreatedAt:   complaint.CreatedAt,
		UpdatedAt:   complaint.UpdatedAt,
	}
}
