package event

import (
	"context"
	"log"

	"fieldos/internal/port"

	"fieldos/internal/domain"
)

type logPublisher struct{}

// NewLogPublisher creates an EventPublisher that writes events to the
// process log. Stands in for a real broker in development and tests.
func NewLogPublisher() port.EventPublisher {
	return &logPublisher{}
}

func (p *logPublisher) Publish(_ context.Context, event domain.Event) error {
	log.Printf("[EVENT] %s tenant=%s entity=%s at=%s",
		event.Type, event.TenantID, event.EntityID, event.OccurredAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}
