package port

import (
	"context"

	"fieldos/internal/domain"
)

// EventPublisher delivers outbound engine events to downstream consumers
// (notifications, accounting sync). Publish failures are logged by callers
// and never roll back the transition that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
