// Package workflow contains the order saga: the deterministic orchestration
// of order placement over durable activities. All side effects live in the
// activities package; this package only sequences them, classifies their
// failures and drives compensation.
package workflow

import (
	"strings"

	"github.com/mercato/order-system/order-service/activities"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// OrderSagaInput is the immutable request the saga works through
type OrderSagaInput struct {
	UserID      models.ID          `json:"user_id"`
	UserEmail   string             `json:"user_email"`
	TotalAmount models.Money       `json:"total_amount"`
	Items       []domain.OrderItem `json:"items"`
}

// OrderSagaResult reports where the order ended up. Business failures are a
// normal outcome: the workflow completes with the order's terminal status
// rather than failing the run.
type OrderSagaResult struct {
	OrderID models.ID          `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
}

// sagaProgress tracks which steps have effects that need undoing
type sagaProgress struct {
	transactionID      models.ID
	inventoryAttempted bool
}

// OrderSaga places an order: create the pending record, charge payment,
// reserve inventory, hand off to fulfillment, confirm, complete. Any forward
// failure routes through compensation, which runs on a disconnected context
// so cancellation cannot abandon money or stock.
func OrderSaga(ctx workflow.Context, input OrderSagaInput) (*OrderSagaResult, error) {
	logger := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, forwardActivityOptions())

	var acts *activities.Activities

	var created activities.CreatePendingOrderResult
	err := workflow.ExecuteActivity(ctx, acts.CreatePendingOrder, activities.CreatePendingOrderInput{
		UserID:      input.UserID,
		UserEmail:   input.UserEmail,
		TotalAmount: input.TotalAmount,
		Items:       input.Items,
	}).Get(ctx, &created)
	if err != nil {
		// No durable order record exists, there is nothing to compensate.
		logger.Error("failed to create pending order", "error", err)
		return nil, err
	}
	orderID := created.OrderID
	logger.Info("order created", "order_id", orderID)

	var progress sagaProgress

	err = workflow.ExecuteActivity(ctx, acts.UpdateOrderStatus, activities.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  domain.OrderStatusProcessing,
	}).Get(ctx, nil)
	if err != nil {
		return compensate(ctx, input, orderID, progress, err)
	}

	var charged activities.ChargePaymentResult
	err = workflow.ExecuteActivity(ctx, acts.ChargePayment, activities.ChargePaymentInput{
		OrderID: orderID,
		Amount:  input.TotalAmount,
	}).Get(ctx, &charged)
	if err != nil {
		return compensate(ctx, input, orderID, progress, err)
	}
	progress.transactionID = charged.TransactionID
	logger.Info("payment charged", "order_id", orderID, "transaction_id", charged.TransactionID)

	err = workflow.ExecuteActivity(ctx, acts.UpdateOrderStatus, activities.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  domain.OrderStatusPaid,
	}).Get(ctx, nil)
	if err != nil {
		return compensate(ctx, input, orderID, progress, err)
	}

	// From here the decrement may have committed even if the activity
	// errors; the restore below is gated on the reservation record.
	progress.inventoryAttempted = true
	err = workflow.ExecuteActivity(ctx, acts.ValidateAndDecreaseInventory, activities.InventoryInput{
		OrderID: orderID,
		Items:   itemQuantities(input.Items),
	}).Get(ctx, nil)
	if err != nil {
		return compensate(ctx, input, orderID, progress, err)
	}
	logger.Info("inventory reserved", "order_id", orderID)

	err = workflow.ExecuteActivity(ctx, acts.UpdateOrderStatus, activities.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  domain.OrderStatusAwaitingFulfillment,
	}).Get(ctx, nil)
	if err != nil {
		return compensate(ctx, input, orderID, progress, err)
	}

	err = workflow.ExecuteActivity(ctx, acts.NotifyFulfillment, activities.NotifyFulfillmentInput{
		OrderID: orderID,
		Items:   fulfillmentItems(input.Items),
	}).Get(ctx, nil)
	if err != nil {
		return compensate(ctx, input, orderID, progress, err)
	}

	err = workflow.ExecuteActivity(ctx, acts.SendConfirmation, activities.SendConfirmationInput{
		OrderID:   orderID,
		UserEmail: input.UserEmail,
	}).Get(ctx, nil)
	if err != nil {
		return compensate(ctx, input, orderID, progress, err)
	}

	err = workflow.ExecuteActivity(ctx, acts.UpdateOrderStatus, activities.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  domain.OrderStatusCompleted,
	}).Get(ctx, nil)
	if err != nil {
		return compensate(ctx, input, orderID, progress, err)
	}

	logger.Info("order completed", "order_id", orderID)
	return &OrderSagaResult{OrderID: orderID, Status: domain.OrderStatusCompleted}, nil
}

// compensate undoes whatever the forward path already did, records the
// terminal status and notifies the customer. It runs on a disconnected
// context so a cancelled saga still compensates fully. Every compensation
// step is attempted even if an earlier one fails; only after all of them
// does an aggregate failure escalate.
func compensate(ctx workflow.Context, input OrderSagaInput, orderID models.ID, progress sagaProgress, cause error) (*OrderSagaResult, error) {
	logger := workflow.GetLogger(ctx)

	kind := Classify(cause)
	status := kind.TerminalStatus()
	logger.Error("order saga compensating", "order_id", orderID, "terminal_status", status, "error", cause)

	dctx, cancel := workflow.NewDisconnectedContext(ctx)
	defer cancel()
	dctx = workflow.WithActivityOptions(dctx, compensationActivityOptions())

	var acts *activities.Activities
	var failures []string

	// A rolled-back stock shortfall left nothing reserved, skip the restore.
	if progress.inventoryAttempted && kind != FailureInsufficientStock {
		err := workflow.ExecuteActivity(dctx, acts.RestoreInventory, activities.InventoryInput{
			OrderID: orderID,
			Items:   itemQuantities(input.Items),
		}).Get(dctx, nil)
		if err != nil {
			failures = append(failures, "restore inventory: "+err.Error())
		}
	}

	if progress.transactionID != "" {
		err := workflow.ExecuteActivity(dctx, acts.RefundPayment, activities.RefundPaymentInput{
			TransactionID: progress.transactionID,
		}).Get(dctx, nil)
		if err != nil {
			failures = append(failures, "refund payment: "+err.Error())
		}
	}

	err := workflow.ExecuteActivity(dctx, acts.UpdateOrderStatus, activities.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  status,
	}).Get(dctx, nil)
	if err != nil {
		failures = append(failures, "update order status: "+err.Error())
	}

	err = workflow.ExecuteActivity(dctx, acts.SendFailureNotification, activities.SendFailureNotificationInput{
		OrderID:   orderID,
		UserEmail: input.UserEmail,
		Reason:    kind.Reason(),
	}).Get(dctx, nil)
	if err != nil {
		failures = append(failures, "send failure notification: "+err.Error())
	}

	if len(failures) > 0 {
		// Money or stock may be stranded. Fail the run loudly so operators
		// see it instead of a quietly "handled" order.
		logger.Error("compensation incomplete", "order_id", orderID, "failures", failures)
		return nil, temporal.NewNonRetryableApplicationError(
			"compensation incomplete: "+strings.Join(failures, "; "),
			domain.ErrTypeCompensationFailed, cause, failures)
	}

	return &OrderSagaResult{OrderID: orderID, Status: status}, nil
}

func itemQuantities(items []domain.OrderItem) []domain.ItemQuantity {
	result := make([]domain.ItemQuantity, len(items))
	for i, item := range items {
		result[i] = domain.ItemQuantity{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return result
}

func fulfillmentItems(items []domain.OrderItem) []domain.FulfillmentItem {
	result := make([]domain.FulfillmentItem, len(items))
	for i, item := range items {
		result[i] = domain.FulfillmentItem{ProductID: item.ProductID, Name: item.Name, Quantity: item.Quantity}
	}
	return result
}
