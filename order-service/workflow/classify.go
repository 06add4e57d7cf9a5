package workflow

import (
	"errors"

	"github.com/mercato/order-system/order-service/domain"
	"go.temporal.io/sdk/temporal"
)

// FailureKind is the saga's view of why a forward step gave up
type FailureKind int

const (
	// FailureOther is any failure that exhausted its retries
	FailureOther FailureKind = iota
	// FailurePaymentDeclined is a definitive decline by the provider
	FailurePaymentDeclined
	// FailureInsufficientStock is a definitive stock shortfall
	FailureInsufficientStock
	// FailureCancelled is an external cancellation of the saga
	FailureCancelled
)

// Classify maps an error from a forward step onto the failure taxonomy.
// Activities tag definitive failures with application error types; anything
// untagged already went through the retry policy and is treated as fatal.
func Classify(err error) FailureKind {
	if temporal.IsCanceledError(err) {
		return FailureCancelled
	}

	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case domain.ErrTypePaymentDeclined:
			return FailurePaymentDeclined
		case domain.ErrTypeInsufficientStock:
			return FailureInsufficientStock
		}
	}

	return FailureOther
}

// TerminalStatus returns the order status a failure kind resolves to
func (k FailureKind) TerminalStatus() domain.OrderStatus {
	switch k {
	case FailurePaymentDeclined:
		return domain.OrderStatusPaymentFailed
	case FailureInsufficientStock:
		return domain.OrderStatusInventoryCheckFailed
	default:
		return domain.OrderStatusCancelled
	}
}

// Reason returns the customer-facing failure reason
func (k FailureKind) Reason() string {
	switch k {
	case FailurePaymentDeclined:
		return "payment was declined"
	case FailureInsufficientStock:
		return "one or more items are out of stock"
	case FailureCancelled:
		return "the order was cancelled"
	default:
		return "the order could not be processed"
	}
}
