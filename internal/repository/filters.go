package repository

import "github.com/civicdesk/complaint-service/internal/domain"

// DefaultListLimit applies when a filter carries no positive limit.
const DefaultListLimit = 20

// UserFilter narrows user listings.
type UserFilter struct {
	Role       *domain.Role
	Department *string
	Limit      int
	Offset     int
}

// IssueTypeFilter narrows issue type listings.
type IssueTypeFilter struct {
	DepartmentID    *int64
	IncludeInactive bool
}

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	UserID      *int64
	IssueTypeID *int64
	Statuses    []domain.ComplaintStatus
	Urgencies   []domain.ComplaintUrgency
	Limit       int
	Offset      int
}

// Page normalizes limit and offset.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
