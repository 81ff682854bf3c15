package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// SubmitComplaintRequest payload.
type SubmitComplaintRequest struct {
	UserID      int64  `json:"user_id"`
	IssueTypeID int64  `json:"issue_type_id"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Status      string `json:"status"`
	Urgency     string `json:"urgency"`
}

// UpdateComplaintRequest payload.
type UpdateComplaintRequest struct {
	Status     *string `json:"status"`
	Urgency    *string `json:"urgency"`
	AssignedTo *int64  `json:"assigned_to"`
	ChangedBy  *int64  `json:"changed_by"`
	Comment    *string `json:"comment"`
}

// ComplaintResponse representation.
type ComplaintResponse struct {
	ID          int64                   `json:"id"`
	UserID      int64                   `json:"user_id"`
	IssueTypeID int64                   `json:"issue_type_id"`
	Description string                  `json:"description"`
	Address     string                  `json:"address"`
	Status      domain.ComplaintStatus  `json:"status"`
	Urgency     domain.ComplaintUrgency `json:"urgency"`
	Department  *string                 `json:"department"`
	AssignedTo  *int64                  `json:"assigned_to"`
	AssignedAt  *time.Time              `json:"assigned_at"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// ComplaintHistoryResponse is one status transition.
type ComplaintHistoryResponse struct {
	ID          int64                   `json:"id"`
	ComplaintID int64                   `json:"complaint_id"`
	OldStatus   *domain.ComplaintStatus `json:"old_status"`
	NewStatus   domain.ComplaintStatus  `json:"new_status"`
	ChangedBy   *int64                  `json:"changed_by"`
	Comment     *string                 `json:"comment"`
	ChangedAt   time.Time               `json:"changed_at"`
}

// Pagination metadata for paged listings.
type Pagination struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	Pages    int  `json:"pages"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
}
