package domain

import (
	"fmt"

	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

// Failure type tags form the closed error taxonomy the saga classifies on.
// Activities attach them to application errors; the workflow never matches
// on error strings.
const (
	ErrTypePaymentDeclined    = "PaymentDeclined"
	ErrTypeInsufficientStock  = "InsufficientStock"
	ErrTypeCompensationFailed = "CompensationFailed"
)

var (
	// ErrPaymentDeclined is returned by the gateway for a definitive
	// decline; an identical retry will not change the outcome.
	ErrPaymentDeclined = errors.New("payment declined by provider")

	// ErrProductNotFound is the inventory/catalog not-found sentinel
	ErrProductNotFound = errors.New("product not found")

	// ErrOrderNotFound is returned when an order lookup misses
	ErrOrderNotFound = errors.New("order not found")
)

// InsufficientStockError reports the first product of a batch that could not
// be decremented. Available is -1 when the product row does not exist.
type InsufficientStockError struct {
	ProductID models.ID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	if e.Available < 0 {
		return fmt.Sprintf("insufficient stock for product %s: requested %d, product not found", e.ProductID, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}
