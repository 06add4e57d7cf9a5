package infrastructure

import (
	"context"

	"github.com/mercato/order-system/shared/events"
	"github.com/pkg/errors"
)

var _ events.Publisher = (*StoreAndForwardPublisher)(nil)

// StoreAndForwardPublisher appends events to the event store before handing
// them to the outbound publisher, so the audit stream never misses an event
// that consumers saw.
type StoreAndForwardPublisher struct {
	store     events.EventStore
	publisher events.Publisher
}

// NewStoreAndForwardPublisher creates a StoreAndForwardPublisher
func NewStoreAndForwardPublisher(store events.EventStore, publisher events.Publisher) *StoreAndForwardPublisher {
	return &StoreAndForwardPublisher{store: store, publisher: publisher}
}

// Publish stores then publishes the events
func (p *StoreAndForwardPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	for _, event := range evts {
		if err := p.store.SaveEvents(ctx, event.AggregateID, []*events.Event{event}); err != nil {
			return errors.Wrap(err, "failed to store event")
		}
	}

	if err := p.publisher.Publish(ctx, evts...); err != nil {
		return errors.Wrap(err, "failed to publish events")
	}

	return nil
}
