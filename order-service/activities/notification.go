package activities

import (
	"context"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

// NotifyFulfillmentInput carries the pick list for the fulfillment service
type NotifyFulfillmentInput struct {
	OrderID models.ID                `json:"order_id"`
	Items   []domain.FulfillmentItem `json:"items"`
}

// NotifyFulfillment tells the fulfillment service to start preparing the
// order. Delivery is an event publish; the fulfillment side is responsible
// for deduplicating on order id.
func (a *Activities) NotifyFulfillment(ctx context.Context, input NotifyFulfillmentInput) error {
	event := events.NewEvent(input.OrderID, events.FulfillmentRequestedEvent, domain.FulfillmentRequestedData{
		OrderID: input.OrderID,
		Items:   input.Items,
	})

	if err := a.publisher.Publish(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish fulfillment request")
	}
	return nil
}

// SendConfirmationInput identifies the customer to congratulate
type SendConfirmationInput struct {
	OrderID   models.ID `json:"order_id"`
	UserEmail string    `json:"user_email"`
}

// SendConfirmation requests the order confirmation notification
func (a *Activities) SendConfirmation(ctx context.Context, input SendConfirmationInput) error {
	event := events.NewEvent(input.OrderID, events.ConfirmationRequestedEvent, domain.ConfirmationRequestedData{
		OrderID:   input.OrderID,
		UserEmail: input.UserEmail,
	})

	if err := a.publisher.Publish(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish confirmation request")
	}
	return nil
}

// SendFailureNotificationInput identifies the customer and the reason
type SendFailureNotificationInput struct {
	OrderID   models.ID `json:"order_id"`
	UserEmail string    `json:"user_email"`
	Reason    string    `json:"reason"`
}

// SendFailureNotification requests the order failure notification
func (a *Activities) SendFailureNotification(ctx context.Context, input SendFailureNotificationInput) error {
	event := events.NewEvent(input.OrderID, events.FailureNotificationRequestedEvent, domain.FailureNotificationData{
		OrderID:   input.OrderID,
		UserEmail: input.UserEmail,
		Reason:    input.Reason,
	})

	if err := a.publisher.Publish(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish failure notification request")
	}
	return nil
}
