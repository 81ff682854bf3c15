package service

import (
	"context"
	"strings"
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/validation"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// Pagination bounds for complaint listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const submittedComment = "complaint submitted"

// ComplaintService accepts complaints and tracks their status.
type ComplaintService struct {
	deps Dependencies
}

// NewComplaintService constructs the service.
func NewComplaintService(deps Dependencies) *ComplaintService {
	return &ComplaintService{deps: deps}
}

// SubmitComplaintInput payload. Status and urgency fall back to OPEN and MEDIUM.
type SubmitComplaintInput struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	IssueTypeID int64  `json:"issue_type_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,notblank,min=10,max=1000"`
	Address     string `json:"address" validate:"required,notblank,min=5,max=500"`
	Status      string `json:"status"`
	Urgency     string `json:"urgency"`
}

// UpdateComplaintInput carries a status, urgency or assignment change.
type UpdateComplaintInput struct {
	Status     *string `json:"status" validate:"omitnil,required"`
	Urgency    *string `json:"urgency" validate:"omitnil,required"`
	AssignedTo *int64  `json:"assigned_to" validate:"omitnil,gt=0"`
	ChangedBy  *int64  `json:"changed_by" validate:"omitnil,gt=0"`
	Comment    *string `json:"comment" validate:"omitnil,max=1000"`
}

func (in *SubmitComplaintInput) normalize() {
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
}

func (in *UpdateComplaintInput) normalize() {
	in.Comment = optionalText(in.Comment)
}

// ComplaintListInput narrows complaint listings. Page is 1-based.
type ComplaintListInput struct {
	UserID      *int64
	IssueTypeID *int64
	Statuses    []string
	Urgencies   []string
	Page        int `json:"page" validate:"gte=0"`
	PageSize    int `json:"page_size" validate:"gte=0,lte=100"`
}

// ComplaintPage is one page of complaints plus the unpaged total.
type ComplaintPage struct {
	Items    []domain.Complaint
	Total    int
	Page     int
	PageSize int
}

// Pages returns the number of pages needed for Total.
func (p ComplaintPage) Pages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Submit records a complaint together with its initial history entry. The
// complaint is routed to the department owning its issue type.
func (s *ComplaintService) Submit(ctx context.Context, in SubmitComplaintInput) (*domain.Complaint, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	status, err := domain.ParseComplaintStatus(in.Status)
	if err != nil {
		return nil, err
	}
	urgency, err := domain.ParseComplaintUrgency(in.Urgency)
	if err != nil {
		return nil, err
	}

	complaint := &domain.Complaint{
		UserID:      in.UserID,
		IssueTypeID: in.IssueTypeID,
		Description: in.Description,
		Address:     in.Address,
		Status:      status,
		Urgency:     urgency,
	}

	repos := s.deps.Repos
	err = repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repos.Users.GetByID(ctx, in.UserID); err != nil {
			return notFound(err, "user", in.UserID)
		}
		issueType, err := repos.IssueTypes.GetByID(ctx, in.IssueTypeID)
		if err != nil {
			return notFound(err, "issue type", in.IssueTypeID)
		}
		if !issueType.IsActive {
			return apperrors.NewNotFound("issue type", map[string]any{"id": in.IssueTypeID, "reason": "inactive"})
		}
		dept, err := repos.Departments.GetByID(ctx, issueType.DepartmentID)
		if err != nil {
			return notFound(err, "department", issueType.DepartmentID)
		}
		complaint.Department = &dept.Name
		if err := repos.Complaints.Create(ctx, complaint); err != nil {
			return err
		}
		comment := submittedComment
		userID := in.UserID
		return repos.History.Create(ctx, &domain.ComplaintStatusHistory{
			ComplaintID: complaint.ID,
			NewStatus:   complaint.Status,
			ChangedBy:   &userID,
			Comment:     &comment,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.deps.Metrics.RecordComplaintSubmitted(string(complaint.Urgency))
	publish(ctx, s.deps, events.NewEvent(events.EventComplaintSubmitted, events.ResourceComplaint, complaint.ID, events.ComplaintSubmittedPayload{
		UserID:      complaint.UserID,
		IssueTypeID: complaint.IssueTypeID,
		Department:  complaint.Department,
		Status:      complaint.Status,
		Urgency:     complaint.Urgency,
	}))
	return complaint, nil
}

// GetByID fetches a complaint.
func (s *ComplaintService) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	complaint, err := s.deps.Repos.Complaints.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(notFound(err, "complaint", id))
	}
	return complaint, nil
}

// List returns one page of complaints ordered by creation.
func (s *ComplaintService) List(ctx context.Context, in ComplaintListInput) (*ComplaintPage, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	page := max(in.Page, 1)
	pageSize := in.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	filter := repository.ComplaintFilter{
		UserID:      in.UserID,
		IssueTypeID: in.IssueTypeID,
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	}
	for _, raw := range in.Statuses {
		status, err := domain.ParseComplaintStatus(raw)
		if err != nil {
			return nil, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, raw := range in.Urgencies {
		urgency, err := domain.ParseComplaintUrgency(raw)
		if err != nil {
			return nil, err
		}
		filter.Urgencies = append(filter.Urgencies, urgency)
	}

	result := &ComplaintPage{Page: page, PageSize: pageSize}
	repos := s.deps.Repos
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if result.Total, err = repos.Complaints.Count(ctx, filter); err != nil {
			return err
		}
		result.Items, err = repos.Complaints.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// Update changes status, urgency or assignee. Any valid status may follow any
// other; a status change appends a history entry.
func (s *ComplaintService) Update(ctx context.Context, id int64, in UpdateComplaintInput) (*domain.Complaint, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Status == nil && in.Urgency == nil && in.AssignedTo == nil {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{
			"status": "status, urgency or assigned_to is required",
		})
	}

	var newStatus *domain.ComplaintStatus
	if in.Status != nil {
		status, err := domain.ParseComplaintStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		newStatus = &status
	}
	var newUrgency *domain.ComplaintUrgency
	if in.Urgency != nil {
		urgency, err := domain.ParseComplaintUrgency(*in.Urgency)
		if err != nil {
			return nil, err
		}
		newUrgency = &urgency
	}

	var complaint *domain.Complaint
	var payload events.ComplaintUpdatedPayload
	repos := s.deps.Repos
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		complaint, err = repos.Complaints.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "complaint", id)
		}
		if in.ChangedBy != nil {
			if _, err := repos.Users.GetByID(ctx, *in.ChangedBy); err != nil {
				return notFound(err, "user", *in.ChangedBy)
			}
		}
		if in.AssignedTo != nil {
			if _, err := repos.Users.GetByID(ctx, *in.AssignedTo); err != nil {
				return notFound(err, "user", *in.AssignedTo)
			}
			assignedAt := time.Now().UTC()
			complaint.AssignedTo = in.AssignedTo
			complaint.AssignedAt = &assignedAt
		}

		payload = events.ComplaintUpdatedPayload{
			OldStatus:  complaint.Status,
			NewStatus:  complaint.Status,
			OldUrgency: complaint.Urgency,
			NewUrgency: complaint.Urgency,
			AssignedTo: in.AssignedTo,
			ChangedBy:  in.ChangedBy,
			Comment:    in.Comment,
		}
		if newStatus != nil {
			complaint.Status = *newStatus
			payload.NewStatus = *newStatus
		}
		if newUrgency != nil {
			complaint.Urgency = *newUrgency
			payload.NewUrgency = *newUrgency
		}
		if err := repos.Complaints.Update(ctx, complaint); err != nil {
			return err
		}

		if payload.OldStatus == payload.NewStatus {
			return nil
		}
		oldStatus := payload.OldStatus
		return repos.History.Create(ctx, &domain.ComplaintStatusHistory{
			ComplaintID: complaint.ID,
			OldStatus:   &oldStatus,
			NewStatus:   complaint.Status,
			ChangedBy:   in.ChangedBy,
			Comment:     in.Comment,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.deps, events.NewEvent(events.EventComplaintUpdated, events.ResourceComplaint, complaint.ID, payload))
	return complaint, nil
}

// History lists status transitions of a complaint, oldest first.
func (s *ComplaintService) History(ctx context.Context, id int64) ([]domain.ComplaintStatusHistory, error) {
	var entries []domain.ComplaintStatusHistory
	repos := s.deps.Repos
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repos.Complaints.GetByID(ctx, id); err != nil {
			return notFound(err, "complaint", id)
		}
		var err error
		entries, err = repos.History.ListByComplaint(ctx, id)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}
