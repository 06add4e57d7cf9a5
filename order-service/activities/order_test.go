package activities_test

import (
	"context"
	"testing"

	"github.com/mercato/order-system/order-service/activities"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/mocks"
	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

type orderFixture struct {
	orders    *mocks.OrderRepository
	publisher *mocks.Publisher
	acts      *activities.Activities
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(mocks.OrderRepository),
		publisher: new(mocks.Publisher),
	}
	f.acts = activities.NewActivities(
		f.orders, new(mocks.PaymentTransactionRepository), new(mocks.InventoryRepository),
		new(mocks.PaymentGateway), f.publisher)
	return f
}

func pendingOrderInput() activities.CreatePendingOrderInput {
	return activities.CreatePendingOrderInput{
		UserID:      models.GenerateUUID(),
		UserEmail:   "buyer@example.com",
		TotalAmount: models.NewMoney(2000, "USD"),
		Items: []domain.OrderItem{
			{ProductID: models.GenerateUUID(), Name: "Product A", Quantity: 2, PriceAtOrder: models.NewMoney(1000, "USD")},
		},
	}
}

func TestCreatePendingOrder(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByWorkflowID", mock.Anything, mock.Anything).Return(nil, nil)
	f.orders.On("Save", mock.Anything, mock.MatchedBy(func(order *domain.Order) bool {
		return order.Status == domain.OrderStatusPending && order.WorkflowID != ""
	})).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(evts []*events.Event) bool {
		return len(evts) == 1 && evts[0].EventType == events.OrderCreatedEvent
	})).Return(nil)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.acts.CreatePendingOrder)

	val, err := env.ExecuteActivity(f.acts.CreatePendingOrder, pendingOrderInput())
	require.NoError(t, err)

	var result activities.CreatePendingOrderResult
	require.NoError(t, val.Get(&result))
	assert.NotEmpty(t, result.OrderID)
	f.orders.AssertExpectations(t)
}

func TestCreatePendingOrder_RetryFindsExistingOrder(t *testing.T) {
	f := newOrderFixture()

	existing, err := domain.CreateOrder(
		models.GenerateUUID(), "buyer@example.com", models.NewMoney(2000, "USD"),
		[]domain.OrderItem{{ProductID: models.GenerateUUID(), Name: "A", Quantity: 2, PriceAtOrder: models.NewMoney(1000, "USD")}},
		"some-workflow")
	require.NoError(t, err)

	f.orders.On("FindByWorkflowID", mock.Anything, mock.Anything).Return(existing, nil)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.acts.CreatePendingOrder)

	val, err := env.ExecuteActivity(f.acts.CreatePendingOrder, pendingOrderInput())
	require.NoError(t, err)

	var result activities.CreatePendingOrderResult
	require.NoError(t, val.Get(&result))
	assert.Equal(t, existing.ID, result.OrderID)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture()

	order, err := domain.CreateOrder(
		models.GenerateUUID(), "buyer@example.com", models.NewMoney(2000, "USD"),
		[]domain.OrderItem{{ProductID: models.GenerateUUID(), Name: "A", Quantity: 2, PriceAtOrder: models.NewMoney(1000, "USD")}},
		"some-workflow")
	require.NoError(t, err)
	order.ClearEvents()

	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.orders.On("UpdateStatus", mock.Anything, order.ID, domain.OrderStatusProcessing).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(evts []*events.Event) bool {
		return len(evts) == 1 && evts[0].EventType == events.OrderStatusChangedEvent
	})).Return(nil)

	err = f.acts.UpdateOrderStatus(context.Background(), activities.UpdateOrderStatusInput{
		OrderID: order.ID,
		Status:  domain.OrderStatusProcessing,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	f.orders.AssertExpectations(t)
}

func TestUpdateOrderStatus_SameStatusIsNoOp(t *testing.T) {
	f := newOrderFixture()

	order, err := domain.CreateOrder(
		models.GenerateUUID(), "buyer@example.com", models.NewMoney(2000, "USD"),
		[]domain.OrderItem{{ProductID: models.GenerateUUID(), Name: "A", Quantity: 2, PriceAtOrder: models.NewMoney(1000, "USD")}},
		"some-workflow")
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	err = f.acts.UpdateOrderStatus(context.Background(), activities.UpdateOrderStatusInput{
		OrderID: order.ID,
		Status:  domain.OrderStatusPending,
	})

	require.NoError(t, err)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_OrderMissing(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

	err := f.acts.UpdateOrderStatus(context.Background(), activities.UpdateOrderStatusInput{
		OrderID: models.GenerateUUID(),
		Status:  domain.OrderStatusProcessing,
	})

	assert.Error(t, err)
}
