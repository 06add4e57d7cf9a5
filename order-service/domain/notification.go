package domain

import (
	"context"

	"github.com/mercato/order-system/shared/models"
)

// EmailSender delivers customer notifications. The real transport lives
// behind this interface; the notifier binary wires a logging implementation.
type EmailSender interface {
	SendConfirmation(ctx context.Context, email string, orderID models.ID) error
	SendFailure(ctx context.Context, email string, orderID models.ID, reason string) error
}

// ConfirmationRequestedData is the payload for confirmation notifications
type ConfirmationRequestedData struct {
	OrderID   models.ID `json:"order_id"`
	UserEmail string    `json:"user_email"`
}

// FailureNotificationData is the payload for failure notifications
type FailureNotificationData struct {
	OrderID   models.ID `json:"order_id"`
	UserEmail string    `json:"user_email"`
	Reason    string    `json:"reason"`
}

// FulfillmentRequestedData is published for the fulfillment service when an
// order is ready to be prepared.
type FulfillmentRequestedData struct {
	OrderID models.ID         `json:"order_id"`
	Items   []FulfillmentItem `json:"items"`
}

// FulfillmentItem carries what fulfillment needs to pick an item
type FulfillmentItem struct {
	ProductID models.ID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
}
