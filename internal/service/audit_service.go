package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/events"
)

// AuditService writes one audit log entry per mutating operation.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	events.SubscribeAll(a.dispatcher, a.handle)
}

var auditActions = map[events.EventType]string{
	events.EventUserRegistered:     "CREATE",
	events.EventUserUpdated:        "UPDATE",
	events.EventUserRoleChanged:    "UPDATE_ROLE",
	events.EventDepartmentCreated:  "CREATE",
	events.EventDepartmentUpdated:  "UPDATE",
	events.EventIssueTypeCreated:   "CREATE",
	events.EventIssueTypeUpdated:   "UPDATE",
	events.EventComplaintSubmitted: "CREATE",
	events.EventComplaintUpdated:   "UPDATE_STATUS",
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	action, ok := auditActions[event.Type]
	if !ok {
		action = string(event.Type)
	}
	a.logger.Info("audit",
		zap.String("action", action),
		zap.String("resource_type", event.ResourceType),
		zap.Int64("resource_id", event.ResourceID),
		zap.String("event_id", event.ID),
		zap.Time("at", event.Timestamp),
		zap.Any("details", event.Payload))
	return nil
}
