package application

import (
	"context"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"github.com/mercato/order-system/shared/telemetry"
	"github.com/pkg/errors"
)

// GetOrder reads orders for the query side of the API
type GetOrder struct {
	orders domain.OrderRepository
}

// NewGetOrder creates the use case
func NewGetOrder(orders domain.OrderRepository) *GetOrder {
	return &GetOrder{orders: orders}
}

// ByID returns the order with the given id
func (uc *GetOrder) ByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "GetOrder.ByID")
	defer span.End()

	orderID, err := models.NewID(id)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, "order id is not a valid id")
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order")
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	return order, nil
}

// ByReference returns the order created by the saga run with the given
// reference. While the saga has not yet created the order this misses, which
// callers should treat as "still pending".
func (uc *GetOrder) ByReference(ctx context.Context, reference string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "GetOrder.ByReference")
	defer span.End()

	if reference == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "order reference is required")
	}

	order, err := uc.orders.FindByWorkflowID(ctx, reference)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order")
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	return order, nil
}
