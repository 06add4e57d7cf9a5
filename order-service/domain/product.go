package domain

import (
	"context"

	"github.com/mercato/order-system/shared/models"
)

// Product is a catalog entry. Prices are resolved server-side when an order
// is placed and snapshotted into the order items.
type Product struct {
	ID    models.ID    `json:"id"`
	Name  string       `json:"name"`
	Price models.Money `json:"price"`
}

// ProductRepository interface
type ProductRepository interface {
	FindByID(ctx context.Context, id models.ID) (*Product, error)
	FindByIDs(ctx context.Context, ids []models.ID) (map[models.ID]*Product, error)
}
