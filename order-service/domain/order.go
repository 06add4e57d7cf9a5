package domain

import (
	"context"

	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending              OrderStatus = "PENDING"
	OrderStatusProcessing           OrderStatus = "PROCESSING"
	OrderStatusPaid                 OrderStatus = "PAID"
	OrderStatusAwaitingFulfillment  OrderStatus = "AWAITING_FULFILLMENT"
	OrderStatusCompleted            OrderStatus = "COMPLETED"
	OrderStatusPaymentFailed        OrderStatus = "PAYMENT_FAILED"
	OrderStatusInventoryCheckFailed OrderStatus = "INVENTORY_CHECK_FAILED"
	OrderStatusCancelled            OrderStatus = "CANCELLED"
	OrderStatusRefunded             OrderStatus = "REFUNDED"
)

// forwardTransitions is the happy-path state machine. Failure terminals are
// reachable from any non-terminal state, REFUNDED only through the refund
// branch after compensation.
var forwardTransitions = map[OrderStatus]OrderStatus{
	OrderStatusPending:             OrderStatusProcessing,
	OrderStatusProcessing:          OrderStatusPaid,
	OrderStatusPaid:                OrderStatusAwaitingFulfillment,
	OrderStatusAwaitingFulfillment: OrderStatusCompleted,
}

var failureTerminals = map[OrderStatus]bool{
	OrderStatusPaymentFailed:        true,
	OrderStatusInventoryCheckFailed: true,
	OrderStatusCancelled:            true,
}

// IsTerminal reports whether no forward transition leaves the status
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRefunded || failureTerminals[s]
}

// CanTransition reports whether the state machine allows moving to next
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if forwardTransitions[s] == next {
		return true
	}
	if !s.IsTerminal() && failureTerminals[next] {
		return true
	}
	// Refund branch: a failed order whose charge was compensated
	if next == OrderStatusRefunded {
		return s == OrderStatusInventoryCheckFailed || s == OrderStatusCancelled
	}
	return false
}

// OrderItem is an immutable snapshot of a purchased product. PriceAtOrder is
// captured at order-creation time and never tracks later catalog changes.
type OrderItem struct {
	ProductID    models.ID    `json:"product_id"`
	Name         string       `json:"name"`
	Quantity     int          `json:"quantity"`
	PriceAtOrder models.Money `json:"price_at_order"`
}

// Order aggregate root
type Order struct {
	ID          models.ID
	UserID      models.ID
	UserEmail   string
	TotalAmount models.Money
	Status      OrderStatus
	Items       []OrderItem
	WorkflowID  string
	Timestamps  models.Timestamps
	Version     models.Version

	events []*events.Event
}

// CreateOrder factory method
func CreateOrder(userID models.ID, userEmail string, totalAmount models.Money, items []OrderItem, workflowID string) (*Order, error) {
	if userEmail == "" {
		return nil, errors.New("user email is required")
	}
	if len(items) == 0 {
		return nil, errors.New("order requires at least one item")
	}
	if !totalAmount.IsPositive() {
		return nil, errors.New("total amount must be positive")
	}

	order := &Order{
		ID:          models.GenerateUUID(),
		UserID:      userID,
		UserEmail:   userEmail,
		TotalAmount: totalAmount,
		Status:      OrderStatusPending,
		Items:       items,
		WorkflowID:  workflowID,
		Timestamps:  models.NewTimestamps(),
		Version:     models.NewVersion(),
	}

	event := events.NewEvent(order.ID, events.OrderCreatedEvent, OrderCreatedData{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		WorkflowID:  workflowID,
	})

	order.recordEvent(event)
	return order, nil
}

// Transition moves the order along the state machine, rejecting anything the
// transition table does not allow.
func (o *Order) Transition(next OrderStatus) error {
	if !o.Status.CanTransition(next) {
		return errors.Errorf("illegal order transition %s -> %s", o.Status, next)
	}
	return o.setStatus(next)
}

// ForceStatus is the tolerant status path used while compensating: it skips
// the forward table but still refuses to overwrite a completed order.
func (o *Order) ForceStatus(next OrderStatus) error {
	if o.Status == OrderStatusCompleted {
		return errors.New("cannot overwrite a completed order")
	}
	return o.setStatus(next)
}

func (o *Order) setStatus(next OrderStatus) error {
	previous := o.Status
	o.Status = next
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Update()

	event := events.NewEvent(o.ID, events.OrderStatusChangedEvent, OrderStatusChangedData{
		OrderID:        o.ID,
		PreviousStatus: previous,
		Status:         next,
	})

	o.recordEvent(event)
	return nil
}

// Events returns domain events
func (o *Order) Events() []*events.Event {
	return o.events
}

// ClearEvents clears domain events
func (o *Order) ClearEvents() {
	o.events = make([]*events.Event, 0)
}

func (o *Order) recordEvent(event *events.Event) {
	o.events = append(o.events, event)
}

// Event Data Structures
type OrderCreatedData struct {
	OrderID     models.ID    `json:"order_id"`
	UserID      models.ID    `json:"user_id"`
	TotalAmount models.Money `json:"total_amount"`
	Items       []OrderItem  `json:"items"`
	WorkflowID  string       `json:"workflow_id"`
}

type OrderStatusChangedData struct {
	OrderID        models.ID   `json:"order_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
	Status         OrderStatus `json:"status"`
}

// OrderRepository interface
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	UpdateStatus(ctx context.Context, orderID models.ID, status OrderStatus) error
	FindByID(ctx context.Context, id models.ID) (*Order, error)
	FindByWorkflowID(ctx context.Context, workflowID string) (*Order, error)
}
