package activities

import (
	"context"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"github.com/mercato/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/activity"
)

// CreatePendingOrderInput carries everything needed to persist a new order
type CreatePendingOrderInput struct {
	UserID      models.ID          `json:"user_id"`
	UserEmail   string             `json:"user_email"`
	TotalAmount models.Money       `json:"total_amount"`
	Items       []domain.OrderItem `json:"items"`
}

// CreatePendingOrderResult returns the id of the persisted order
type CreatePendingOrderResult struct {
	OrderID models.ID `json:"order_id"`
}

// CreatePendingOrder persists the order in PENDING before any money moves,
// so every later step has a durable record to compensate against. A retry
// after a commit finds the order by workflow id and returns it unchanged.
func (a *Activities) CreatePendingOrder(ctx context.Context, input CreatePendingOrderInput) (CreatePendingOrderResult, error) {
	workflowID := activity.GetInfo(ctx).WorkflowExecution.ID

	if existing, err := a.orders.FindByWorkflowID(ctx, workflowID); err != nil {
		return CreatePendingOrderResult{}, errors.Wrap(err, "failed to look up order by workflow id")
	} else if existing != nil {
		return CreatePendingOrderResult{OrderID: existing.ID}, nil
	}

	order, err := domain.CreateOrder(input.UserID, input.UserEmail, input.TotalAmount, input.Items, workflowID)
	if err != nil {
		return CreatePendingOrderResult{}, errors.Wrap(err, "failed to create order")
	}

	if err := a.orders.Save(ctx, order); err != nil {
		return CreatePendingOrderResult{}, errors.Wrap(err, "failed to save order")
	}

	if err := a.publisher.Publish(ctx, order.Events()...); err != nil {
		return CreatePendingOrderResult{}, errors.Wrap(err, "failed to publish order events")
	}
	order.ClearEvents()

	telemetry.RecordCounter(ctx, "orders_created_total", "Orders created", 1)

	return CreatePendingOrderResult{OrderID: order.ID}, nil
}

// UpdateOrderStatusInput identifies the order and its next status
type UpdateOrderStatusInput struct {
	OrderID models.ID          `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
}

// UpdateOrderStatus moves the order to the given status. Setting the status
// it already has is a no-op, which makes retried updates harmless.
func (a *Activities) UpdateOrderStatus(ctx context.Context, input UpdateOrderStatusInput) error {
	order, err := a.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return errors.Wrap(err, "failed to load order")
	}
	if order == nil {
		return errors.Errorf("order %s not found", input.OrderID)
	}

	if order.Status == input.Status {
		return nil
	}

	if err := order.ForceStatus(input.Status); err != nil {
		return errors.Wrap(err, "failed to change order status")
	}

	if err := a.orders.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		return errors.Wrap(err, "failed to persist order status")
	}

	if err := a.publisher.Publish(ctx, order.Events()...); err != nil {
		return errors.Wrap(err, "failed to publish order events")
	}
	order.ClearEvents()

	telemetry.RecordCounter(ctx, "order_status_changes_total", "Order status changes", 1,
		attribute.String("status", string(input.Status)))

	return nil
}
