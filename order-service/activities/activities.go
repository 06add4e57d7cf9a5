// Package activities holds the side-effecting steps the order saga executes.
// Each activity is idempotent or safely retryable; failures that retrying can
// never fix are reported as non-retryable application errors carrying one of
// the domain failure types.
package activities

import (
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/events"
)

// Activities bundles the dependencies the saga steps need
type Activities struct {
	orders    domain.OrderRepository
	payments  domain.PaymentTransactionRepository
	inventory domain.InventoryRepository
	gateway   domain.PaymentGateway
	publisher events.Publisher
}

// NewActivities creates the activity set
func NewActivities(
	orders domain.OrderRepository,
	payments domain.PaymentTransactionRepository,
	inventory domain.InventoryRepository,
	gateway domain.PaymentGateway,
	publisher events.Publisher,
) *Activities {
	return &Activities{
		orders:    orders,
		payments:  payments,
		inventory: inventory,
		gateway:   gateway,
		publisher: publisher,
	}
}
