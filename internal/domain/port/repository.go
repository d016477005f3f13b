package port

import (
	"context"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/pkg/events"
)

// ReferenceSampleRepository provides the static reference sample shown on the
// data information page and used as the chart baseline.
type ReferenceSampleRepository interface {
	// List returns every record of the reference sample in display order.
	List(ctx context.Context) ([]model.ReferenceRecord, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}
