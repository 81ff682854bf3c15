package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/config"
	"github.com/civicdesk/complaint-service/internal/observability"
)

// StreamPublisher appends events to a Redis stream for downstream consumers.
type StreamPublisher struct {
	client  redis.Cmdable
	stream  string
	maxLen  int64
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewStreamPublisher builds a publisher writing to cfg.Stream.
func NewStreamPublisher(client redis.Cmdable, cfg config.EventsConfig, logger *zap.Logger, metrics *observability.Metrics) *StreamPublisher {
	return &StreamPublisher{
		client:  client,
		stream:  cfg.Stream,
		maxLen:  cfg.StreamMaxLen,
		logger:  logger,
		metrics: metrics,
	}
}

// Register subscribes the publisher to every event type.
func (p *StreamPublisher) Register(d Dispatcher) {
	SubscribeAll(d, p.Handle)
}

// Handle appends a single event to the stream.
func (p *StreamPublisher) Handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":      event.ID,
			"type":          string(event.Type),
			"resource_type": event.ResourceType,
			"resource_id":   event.ResourceID,
			"timestamp":     event.Timestamp.UnixMilli(),
			"payload":       string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	entryID, err := p.client.XAdd(ctx, args).Result()
	p.metrics.RecordEventPublished(string(event.Type), err)
	if err != nil {
		p.logger.Warn("event stream append failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		return err
	}
	p.logger.Debug("event appended", zap.String("stream", p.stream), zap.String("entry_id", entryID))
	return nil
}
