package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/events"
	"github.com/pkg/errors"
)

// NotificationEventHandlers consumes notification request events and drives
// the email sender. Delivery problems are returned so the queue redelivers.
type NotificationEventHandlers struct {
	sender domain.EmailSender
}

// NewNotificationEventHandlers creates new notification event handlers
func NewNotificationEventHandlers(sender domain.EmailSender) *NotificationEventHandlers {
	return &NotificationEventHandlers{sender: sender}
}

// HandlerID returns the unique identifier for this event handler
func (h *NotificationEventHandlers) HandlerID() string {
	return "notifier-event-handler"
}

// Handle implements the events.EventHandler interface
func (h *NotificationEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.ConfirmationRequestedEvent:
		return h.HandleConfirmationRequested(ctx, event)
	case events.FailureNotificationRequestedEvent:
		return h.HandleFailureRequested(ctx, event)
	default:
		// The queue carries more topics than the notifier cares about.
		return nil
	}
}

// HandleConfirmationRequested sends the order confirmation email
func (h *NotificationEventHandlers) HandleConfirmationRequested(ctx context.Context, event *events.Event) error {
	var data domain.ConfirmationRequestedData
	if err := parseEventData(event, &data); err != nil {
		return errors.Wrap(err, "failed to parse confirmation request")
	}

	if err := h.sender.SendConfirmation(ctx, data.UserEmail, data.OrderID); err != nil {
		log.Printf("failed to send confirmation for order %s: %v", data.OrderID, err)
		return err
	}

	return nil
}

// HandleFailureRequested sends the order failure email
func (h *NotificationEventHandlers) HandleFailureRequested(ctx context.Context, event *events.Event) error {
	var data domain.FailureNotificationData
	if err := parseEventData(event, &data); err != nil {
		return errors.Wrap(err, "failed to parse failure notification request")
	}

	if err := h.sender.SendFailure(ctx, data.UserEmail, data.OrderID, data.Reason); err != nil {
		log.Printf("failed to send failure notification for order %s: %v", data.OrderID, err)
		return err
	}

	return nil
}

func parseEventData(event *events.Event, target interface{}) error {
	jsonData, err := event.MarshalPayload()
	if err != nil {
		return errors.Wrap(err, "failed to marshal event data")
	}

	if err := json.Unmarshal(jsonData, target); err != nil {
		return errors.Wrap(err, "failed to unmarshal event data")
	}

	return nil
}
