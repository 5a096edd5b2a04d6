package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/user-permission-service/internal/core/domain"
)

// StubPublisher logs events instead of sending them to Kafka. Used in
// development environments with no brokers configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a logging-only event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// Publish logs each event at info level and always succeeds.
func (p *StubPublisher) Publish(_ context.Context, events ...domain.Event) error {
	for _, event := range events {
		p.logger.Info("stub event published",
			zap.String("event_type", event.EventName()),
			zap.Time("timestamp", event.OccurredAt()),
			zap.Any("payload", event),
		)
	}
	return nil
}
