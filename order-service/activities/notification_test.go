package activities_test

import (
	"context"
	"testing"

	"github.com/mercato/order-system/order-service/activities"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/mocks"
	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture() (*mocks.Publisher, *activities.Activities) {
	publisher := new(mocks.Publisher)
	acts := activities.NewActivities(
		new(mocks.OrderRepository), new(mocks.PaymentTransactionRepository),
		new(mocks.InventoryRepository), new(mocks.PaymentGateway), publisher)
	return publisher, acts
}

func expectEvent(publisher *mocks.Publisher, eventType string) {
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(evts []*events.Event) bool {
		return len(evts) == 1 && evts[0].EventType == eventType
	})).Return(nil).Once()
}

func TestNotifyFulfillment(t *testing.T) {
	publisher, acts := newNotificationFixture()
	expectEvent(publisher, events.FulfillmentRequestedEvent)

	err := acts.NotifyFulfillment(context.Background(), activities.NotifyFulfillmentInput{
		OrderID: models.GenerateUUID(),
		Items:   []domain.FulfillmentItem{{ProductID: models.GenerateUUID(), Name: "A", Quantity: 2}},
	})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestSendConfirmation(t *testing.T) {
	publisher, acts := newNotificationFixture()
	expectEvent(publisher, events.ConfirmationRequestedEvent)

	err := acts.SendConfirmation(context.Background(), activities.SendConfirmationInput{
		OrderID:   models.GenerateUUID(),
		UserEmail: "buyer@example.com",
	})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestSendFailureNotification(t *testing.T) {
	publisher, acts := newNotificationFixture()
	expectEvent(publisher, events.FailureNotificationRequestedEvent)

	err := acts.SendFailureNotification(context.Background(), activities.SendFailureNotificationInput{
		OrderID:   models.GenerateUUID(),
		UserEmail: "buyer@example.com",
		Reason:    "payment was declined",
	})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}
