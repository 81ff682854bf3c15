package domain

import (
	"strings"
	"time"

	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "OPEN"
	ComplaintStatusAssigned   ComplaintStatus = "ASSIGNED"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
	ComplaintStatusRejected   ComplaintStatus = "REJECTED"
)

// ComplaintUrgency enumerates how pressing a complaint is.
type ComplaintUrgency string

const (
	ComplaintUrgencyLow      ComplaintUrgency = "LOW"
	ComplaintUrgencyMedium   ComplaintUrgency = "MEDIUM"
	ComplaintUrgencyHigh     ComplaintUrgency = "HIGH"
	ComplaintUrgencyCritical ComplaintUrgency = "CRITICAL"
)

const (
	DefaultComplaintStatus  = ComplaintStatusOpen
	DefaultComplaintUrgency = ComplaintUrgencyMedium
)

var (
	ComplaintStatuses = []ComplaintStatus{
		ComplaintStatusOpen,
		ComplaintStatusAssigned,
		ComplaintStatusInProgress,
		ComplaintStatusResolved,
		ComplaintStatusClosed,
		ComplaintStatusRejected,
	}
	ComplaintUrgencies = []ComplaintUrgency{
		ComplaintUrgencyLow,
		ComplaintUrgencyMedium,
		ComplaintUrgencyHigh,
		ComplaintUrgencyCritical,
	}
)

// ParseComplaintStatus matches raw input case-insensitively and returns the
// upper-case status. Blank input yields the default status.
func ParseComplaintStatus(raw string) (ComplaintStatus, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultComplaintStatus, nil
	}
	for _, s := range ComplaintStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", apperrors.NewValidationError("invalid status", map[string]any{
		"status": "must be one of OPEN, ASSIGNED, IN_PROGRESS, RESOLVED, CLOSED, REJECTED",
	})
}

// ParseComplaintUrgency is the urgency counterpart of ParseComplaintStatus.
func ParseComplaintUrgency(raw string) (ComplaintUrgency, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultComplaintUrgency, nil
	}
	for _, u := range ComplaintUrgencies {
		if string(u) == raw {
			return u, nil
		}
	}
	return "", apperrors.NewValidationError("invalid urgency", map[string]any{
		"urgency": "must be one of LOW, MEDIUM, HIGH, CRITICAL",
	})
}

// Complaint is a citizen-reported issue. Department is copied from the issue
// type's department at submission; AssignedTo names the handling user.
type Complaint struct {
	ID          int64
	UserID      int64
	IssueTypeID int64
	Description string
	Address     string
	Status      ComplaintStatus
	Urgency     ComplaintUrgency
	Department  *string
	AssignedTo  *int64
	AssignedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComplaintStatusHistory records a single status transition.
type ComplaintStatusHistory struct {
	ID          int64
	ComplaintID int64
	OldStatus   *ComplaintStatus
	NewStatus   ComplaintStatus
	ChangedBy   *int64
	Comment     *string
	ChangedAt   time.Time
}
