package port

import (
	"context"

	"github.com/arklim/user-permission-service/internal/core/domain"
)

// EventPublisher delivers domain events returned by aggregate mutations.
// Publishing happens after the mutation is persisted; delivery failures
// must not roll back the mutation.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
