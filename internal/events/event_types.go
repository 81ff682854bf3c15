package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventUserUpdated        EventType = "user_updated"
	EventUserRoleChanged    EventType = "user_role_changed"
	EventDepartmentCreated  EventType = "department_created"
	EventDepartmentUpdated  EventType = "department_updated"
	EventIssueTypeCreated   EventType = "issue_type_created"
	EventIssueTypeUpdated   EventType = "issue_type_updated"
	EventComplaintSubmitted EventType = "complaint_submitted"
	EventComplaintUpdated   EventType = "complaint_updated"
)

// AllEventTypes lists every event type emitted by services.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventUserUpdated,
	EventUserRoleChanged,
	EventDepartmentCreated,
	EventDepartmentUpdated,
	EventIssueTypeCreated,
	EventIssueTypeUpdated,
	EventComplaintSubmitted,
	EventComplaintUpdated,
}

// Resource types carried on events.
const (
	ResourceUser       = "user"
	ResourceDepartment = "department"
	ResourceIssueType  = "issue_type"
	ResourceComplaint  = "complaint"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	ResourceType string    `json:"resource_type"`
	ResourceID   int64     `json:"resource_id"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload"`
}

// NewEvent stamps a new event with a random id and the current time.
func NewEvent(eventType EventType, resourceType string, resourceID int64, payload any) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Role       domain.Role `json:"role"`
	Department *string     `json:"department,omitempty"`
}

// UserUpdatedPayload lists the profile fields that changed.
type UserUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	OldRole       domain.Role `json:"old_role"`
	NewRole       domain.Role `json:"new_role"`
	OldDepartment *string     `json:"old_department,omitempty"`
	NewDepartment *string     `json:"new_department,omitempty"`
}

// DepartmentPayload payload.
type DepartmentPayload struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// IssueTypePayload payload.
type IssueTypePayload struct {
	Name         string `json:"name"`
	DepartmentID int64  `json:"department_id"`
	IsActive     bool   `json:"is_active"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	UserID      int64                   `json:"user_id"`
	IssueTypeID int64                   `json:"issue_type_id"`
	Department  *string                 `json:"department,omitempty"`
	Status      domain.ComplaintStatus  `json:"status"`
	Urgency     domain.ComplaintUrgency `json:"urgency"`
}

// ComplaintUpdatedPayload payload.
type ComplaintUpdatedPayload struct {
	OldStatus  domain.ComplaintStatus  `json:"old_status"`
	NewStatus  domain.ComplaintStatus  `json:"new_status"`
	OldUrgency domain.ComplaintUrgency `json:"old_urgency"`
	NewUrgency domain.ComplaintUrgency `json:"new_urgency"`
	AssignedTo *int64                  `json:"assigned_to,omitempty"`
	ChangedBy  *int64                  `json:"changed_by,omitempty"`
	Comment    *string                 `json:"comment,omitempty"`
}
