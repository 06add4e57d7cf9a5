package domain

import (
	"context"

	"github.com/mercato/order-system/shared/models"
)

// InventoryItem represents per-product stock. Quantity is never negative;
// the repository's conditional decrement is the only mutation path.
type InventoryItem struct {
	ProductID models.ID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// ItemQuantity is a product/quantity pair passed to the inventory ledger
type ItemQuantity struct {
	ProductID models.ID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// InventoryRepository is the atomic inventory ledger.
//
// DecreaseStock decrements every item conditionally inside one transaction;
// if any single item falls short the whole batch rolls back and an
// *InsufficientStockError identifies the product. The orderID keys a
// reservation record so a duplicate invocation of a committed decrement is a
// no-op rather than a double decrement.
//
// IncreaseStock is the compensation: unconditional increments, best effort
// per item (a missing product row is skipped, never an error).
type InventoryRepository interface {
	DecreaseStock(ctx context.Context, orderID models.ID, items []ItemQuantity) error
	IncreaseStock(ctx context.Context, orderID models.ID, items []ItemQuantity) error
	GetStockQuantity(ctx context.Context, productID models.ID) (int, error)
}
