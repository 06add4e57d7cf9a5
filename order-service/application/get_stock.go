package application

import (
	"context"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"github.com/mercato/order-system/shared/telemetry"
	"github.com/pkg/errors"
)

// GetStock reads current stock levels
type GetStock struct {
	inventory domain.InventoryRepository
}

// NewGetStock creates the use case
func NewGetStock(inventory domain.InventoryRepository) *GetStock {
	return &GetStock{inventory: inventory}
}

// Execute returns the available quantity for a product
func (uc *GetStock) Execute(ctx context.Context, productID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "GetStock.Execute")
	defer span.End()

	id, err := models.NewID(productID)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidRequest, "product id is not a valid id")
	}

	quantity, err := uc.inventory.GetStockQuantity(ctx, id)
	if err != nil {
		return 0, err
	}

	return quantity, nil
}
