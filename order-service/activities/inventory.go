package activities

import (
	"context"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/mercato/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.temporal.io/sdk/temporal"
)

// InventoryInput identifies the order and the quantities involved
type InventoryInput struct {
	OrderID models.ID             `json:"order_id"`
	Items   []domain.ItemQuantity `json:"items"`
}

// ValidateAndDecreaseInventory decrements stock for every item in one atomic
// batch. A shortfall is definitive for this order and comes back as a
// non-retryable application error naming the product.
func (a *Activities) ValidateAndDecreaseInventory(ctx context.Context, input InventoryInput) error {
	err := a.inventory.DecreaseStock(ctx, input.OrderID, input.Items)
	if err == nil {
		return nil
	}

	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		event := events.NewEvent(input.OrderID, events.InventoryInsufficientEvent, stockErr)
		if pubErr := a.publisher.Publish(ctx, event); pubErr != nil {
			return errors.Wrap(pubErr, "failed to publish inventory event")
		}

		telemetry.RecordCounter(ctx, "inventory_shortfalls_total", "Orders rejected for stock", 1)
		return temporal.NewNonRetryableApplicationError(
			stockErr.Error(), domain.ErrTypeInsufficientStock, stockErr, *stockErr)
	}

	return errors.Wrap(err, "failed to decrease stock")
}

// RestoreInventory is the compensation for a committed decrement. The ledger
// releases the order's reservation, so calling this when nothing was
// decremented, or calling it twice, changes nothing.
func (a *Activities) RestoreInventory(ctx context.Context, input InventoryInput) error {
	if err := a.inventory.IncreaseStock(ctx, input.OrderID, input.Items); err != nil {
		return errors.Wrap(err, "failed to restore stock")
	}

	event := events.NewEvent(input.OrderID, events.InventoryRestoredEvent, input)
	if err := a.publisher.Publish(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish inventory event")
	}

	telemetry.RecordCounter(ctx, "inventory_restores_total", "Inventory compensations", 1)
	return nil
}
