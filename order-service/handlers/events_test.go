package handlers

import (
	"context"
	"testing"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/mocks"
	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandler_Confirmation(t *testing.T) {
	sender := new(mocks.EmailSender)
	h := NewNotificationEventHandlers(sender)

	orderID := models.GenerateUUID()
	sender.On("SendConfirmation", mock.Anything, "buyer@example.com", orderID).Return(nil).Once()

	event := events.NewEvent(orderID, events.ConfirmationRequestedEvent, domain.ConfirmationRequestedData{
		OrderID:   orderID,
		UserEmail: "buyer@example.com",
	})

	require.NoError(t, h.Handle(context.Background(), event))
	sender.AssertExpectations(t)
}

func TestNotificationHandler_Failure(t *testing.T) {
	sender := new(mocks.EmailSender)
	h := NewNotificationEventHandlers(sender)

	orderID := models.GenerateUUID()
	sender.On("SendFailure", mock.Anything, "buyer@example.com", orderID, "payment was declined").Return(nil).Once()

	event := events.NewEvent(orderID, events.FailureNotificationRequestedEvent, domain.FailureNotificationData{
		OrderID:   orderID,
		UserEmail: "buyer@example.com",
		Reason:    "payment was declined",
	})

	require.NoError(t, h.Handle(context.Background(), event))
	sender.AssertExpectations(t)
}

func TestNotificationHandler_IgnoresOtherTopics(t *testing.T) {
	sender := new(mocks.EmailSender)
	h := NewNotificationEventHandlers(sender)

	event := events.NewEvent(models.GenerateUUID(), events.OrderCreatedEvent, nil)

	require.NoError(t, h.Handle(context.Background(), event))
	sender.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "SendFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationHandler_DecodesRawPayload(t *testing.T) {
	sender := new(mocks.EmailSender)
	h := NewNotificationEventHandlers(sender)

	orderID := models.GenerateUUID()
	sender.On("SendConfirmation", mock.Anything, "buyer@example.com", orderID).Return(nil).Once()

	// Events coming off the queue carry their payload as raw JSON.
	event := &events.Event{
		EventType: events.ConfirmationRequestedEvent,
		Data:      []byte(`{"order_id":"` + orderID.String() + `","user_email":"buyer@example.com"}`),
	}

	require.NoError(t, h.Handle(context.Background(), event))
	sender.AssertExpectations(t)
}

func TestNotificationHandler_HandlerID(t *testing.T) {
	h := NewNotificationEventHandlers(new(mocks.EmailSender))
	assert.Equal(t, "notifier-event-handler", h.HandlerID())
}
