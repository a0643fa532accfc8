package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TypeOrderCreated             = "order.created"
	TypeOrderStatusChanged       = "order.status_changed"
	TypeTransactionStatusChanged = "transaction.status_changed"
)

type Event struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	AggregateID string      `json:"aggregateId"`
	OccurredAt  time.Time   `json:"occurredAt"`
	Payload     interface{} `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Emitter publishes domain events after a write has been committed. Events
// are advisory: publish failures are logged and never returned.
type Emitter struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewEmitter(publisher Publisher, logger *zap.Logger) *Emitter {
	return &Emitter{publisher: publisher, logger: logger}
}

func (e *Emitter) Emit(ctx context.Context, eventType, aggregateID string, payload interface{}) {
	event := Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("event publish failed",
			zap.String("eventType", eventType),
			zap.String("aggregateId", aggregateID),
			zap.Error(err),
		)
		return
	}

	e.logger.Debug("event published", zap.String("eventType", eventType), zap.String("aggregateId", aggregateID))
}
