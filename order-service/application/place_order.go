package application

import (
	"context"
	"strings"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/workflow"
	"github.com/mercato/order-system/shared/models"
	"github.com/mercato/order-system/shared/telemetry"
	"github.com/pkg/errors"
)

// ErrInvalidRequest marks request validation failures
var ErrInvalidRequest = errors.New("invalid request")

// SagaStarter launches one order saga and returns its reference
type SagaStarter interface {
	StartOrderSaga(ctx context.Context, input workflow.OrderSagaInput) (string, error)
}

// PlaceOrderItem is one requested product
type PlaceOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderInput is the order placement request
type PlaceOrderInput struct {
	UserID    string           `json:"user_id"`
	UserEmail string           `json:"user_email"`
	Items     []PlaceOrderItem `json:"items"`
}

// PlaceOrderResult carries the reference the caller polls with. The order
// itself does not exist yet; the saga creates it asynchronously.
type PlaceOrderResult struct {
	OrderReference string `json:"order_reference"`
}

// PlaceOrder validates a placement request, prices it against the catalog
// and hands it to the saga. Prices are resolved here, once, so the order
// snapshot never shifts under a catalog update mid-saga.
type PlaceOrder struct {
	products domain.ProductRepository
	starter  SagaStarter
}

// NewPlaceOrder creates the use case
func NewPlaceOrder(products domain.ProductRepository, starter SagaStarter) *PlaceOrder {
	return &PlaceOrder{products: products, starter: starter}
}

// Execute runs the use case
func (uc *PlaceOrder) Execute(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "PlaceOrder.Execute")
	defer span.End()

	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	userID, err := models.NewID(input.UserID)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, "user_id is not a valid id")
	}

	productIDs := make([]models.ID, len(input.Items))
	for i, item := range input.Items {
		id, err := models.NewID(item.ProductID)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidRequest, "product_id %q is not a valid id", item.ProductID)
		}
		productIDs[i] = id
	}

	products, err := uc.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load products")
	}

	var total models.Money
	orderItems := make([]domain.OrderItem, len(input.Items))
	for i, item := range input.Items {
		product, ok := products[productIDs[i]]
		if !ok {
			return nil, errors.Wrapf(domain.ErrProductNotFound, "product %s", item.ProductID)
		}

		lineTotal := product.Price.MultiplyBy(item.Quantity)
		if i == 0 {
			total = lineTotal
		} else {
			total, err = total.Add(lineTotal)
			if err != nil {
				return nil, errors.Wrap(err, "failed to total order")
			}
		}

		orderItems[i] = domain.OrderItem{
			ProductID:    product.ID,
			Name:         product.Name,
			Quantity:     item.Quantity,
			PriceAtOrder: product.Price,
		}
	}

	reference, err := uc.starter.StartOrderSaga(ctx, workflow.OrderSagaInput{
		UserID:      userID,
		UserEmail:   input.UserEmail,
		TotalAmount: total,
		Items:       orderItems,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start order saga")
	}

	telemetry.RecordCounter(ctx, "orders_placed_total", "Order placement requests accepted", 1)

	return &PlaceOrderResult{OrderReference: reference}, nil
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if input.UserEmail == "" || !strings.Contains(input.UserEmail, "@") {
		return errors.Wrap(ErrInvalidRequest, "user_email is required")
	}
	if len(input.Items) == 0 {
		return errors.Wrap(ErrInvalidRequest, "at least one item is required")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return errors.Wrapf(ErrInvalidRequest, "quantity for product %q must be positive", item.ProductID)
		}
	}
	return nil
}
