package domain

import (
	"testing"

	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []OrderItem {
	return []OrderItem{
		{
			ProductID:    models.GenerateUUID(),
			Name:         "Espresso Beans",
			Quantity:     2,
			PriceAtOrder: models.NewMoney(1000, "USD"),
		},
	}
}

func testOrder(t *testing.T) *Order {
	t.Helper()
	order, err := CreateOrder(models.GenerateUUID(), "jane@example.com", models.NewMoney(2000, "USD"), testItems(), "order-saga-test")
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	order := testOrder(t)

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, int64(2000), order.TotalAmount.Amount)
	require.Len(t, order.Events(), 1)
	assert.Equal(t, events.OrderCreatedEvent, order.Events()[0].EventType)
}

func TestCreateOrder_Validation(t *testing.T) {
	userID := models.GenerateUUID()

	_, err := CreateOrder(userID, "", models.NewMoney(2000, "USD"), testItems(), "wf")
	assert.Error(t, err)

	_, err = CreateOrder(userID, "jane@example.com", models.NewMoney(2000, "USD"), nil, "wf")
	assert.Error(t, err)

	_, err = CreateOrder(userID, "jane@example.com", models.NewMoney(0, "USD"), testItems(), "wf")
	assert.Error(t, err)
}

func TestOrder_HappyPathSequence(t *testing.T) {
	order := testOrder(t)

	sequence := []OrderStatus{
		OrderStatusProcessing,
		OrderStatusPaid,
		OrderStatusAwaitingFulfillment,
		OrderStatusCompleted,
	}

	for _, next := range sequence {
		require.NoError(t, order.Transition(next))
		assert.Equal(t, next, order.Status)
	}

	assert.True(t, order.Status.IsTerminal())
}

func TestOrder_RejectsSkippedStates(t *testing.T) {
	order := testOrder(t)

	assert.Error(t, order.Transition(OrderStatusPaid), "cannot skip PROCESSING")
	assert.Error(t, order.Transition(OrderStatusCompleted), "cannot jump to COMPLETED")
	assert.Error(t, order.Transition(OrderStatusRefunded), "REFUNDED is only reachable from the failure branch")
	assert.Equal(t, OrderStatusPending, order.Status)
}

func TestOrder_FailureTerminalsReachableFromAnyForwardState(t *testing.T) {
	tests := []struct {
		name     string
		advance  []OrderStatus
		terminal OrderStatus
	}{
		{"payment failed while processing", []OrderStatus{OrderStatusProcessing}, OrderStatusPaymentFailed},
		{"inventory failed after paid", []OrderStatus{OrderStatusProcessing, OrderStatusPaid}, OrderStatusInventoryCheckFailed},
		{"cancelled while pending", nil, OrderStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder(t)
			for _, s := range tt.advance {
				require.NoError(t, order.Transition(s))
			}
			require.NoError(t, order.Transition(tt.terminal))
			assert.True(t, order.Status.IsTerminal())
		})
	}
}

func TestOrder_RefundBranch(t *testing.T) {
	order := testOrder(t)
	require.NoError(t, order.Transition(OrderStatusProcessing))
	require.NoError(t, order.Transition(OrderStatusPaid))
	require.NoError(t, order.Transition(OrderStatusInventoryCheckFailed))

	require.NoError(t, order.Transition(OrderStatusRefunded))
	assert.Equal(t, OrderStatusRefunded, order.Status)
}

func TestOrder_ForceStatus(t *testing.T) {
	order := testOrder(t)

	// Tolerant path skips the forward table entirely.
	require.NoError(t, order.ForceStatus(OrderStatusCancelled))
	assert.Equal(t, OrderStatusCancelled, order.Status)

	// But a completed order is untouchable.
	completed := testOrder(t)
	for _, s := range []OrderStatus{OrderStatusProcessing, OrderStatusPaid, OrderStatusAwaitingFulfillment, OrderStatusCompleted} {
		require.NoError(t, completed.Transition(s))
	}
	assert.Error(t, completed.ForceStatus(OrderStatusCancelled))
}

func TestOrder_StatusChangeRecordsEvents(t *testing.T) {
	order := testOrder(t)
	order.ClearEvents()

	require.NoError(t, order.Transition(OrderStatusProcessing))

	require.Len(t, order.Events(), 1)
	event := order.Events()[0]
	assert.Equal(t, events.OrderStatusChangedEvent, event.EventType)

	data, ok := event.Data.(OrderStatusChangedData)
	require.True(t, ok)
	assert.Equal(t, OrderStatusPending, data.PreviousStatus)
	assert.Equal(t, OrderStatusProcessing, data.Status)
}
