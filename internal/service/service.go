package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// Dependencies encapsulates what every service needs.
type Dependencies struct {
	Repos      repository.Set
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

func (d Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// publish emits an event once the owning transaction has committed. Delivery
// failures are logged; the committed write stands.
func publish(ctx context.Context, deps Dependencies, event events.Event) {
	if deps.Dispatcher == nil {
		return
	}
	if err := deps.Dispatcher.Publish(ctx, event); err != nil {
		deps.logger().Warn("event delivery failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}

// notFound turns a missing row into a NotFound for the named resource.
func notFound(err error, resource string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

// ensureAbsent converts the result of a uniqueness lookup into conflict when a
// row was found.
func ensureAbsent(lookupErr error, conflict error) error {
	switch {
	case lookupErr == nil:
		return conflict
	case errors.Is(lookupErr, pgx.ErrNoRows):
		return nil
	default:
		return lookupErr
	}
}

// trimPtr returns a trimmed copy of s; nil stays nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// optionalText trims s and treats a blank value as absent.
func optionalText(s *string) *string {
	s = trimPtr(s)
	if s == nil || *s == "" {
		return nil
	}
	return s
}
