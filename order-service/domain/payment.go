package domain

import (
	"context"

	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

// PaymentTransactionStatus represents the status of a charge attempt
type PaymentTransactionStatus string

const (
	PaymentStatusPending         PaymentTransactionStatus = "PENDING"
	PaymentStatusSucceeded       PaymentTransactionStatus = "SUCCEEDED"
	PaymentStatusFailed          PaymentTransactionStatus = "FAILED"
	PaymentStatusRefundInitiated PaymentTransactionStatus = "REFUND_INITIATED"
	PaymentStatusRefunded        PaymentTransactionStatus = "REFUNDED"
	PaymentStatusRefundFailed    PaymentTransactionStatus = "REFUND_FAILED"
)

// PaymentTransaction aggregate root. One row is created per charge attempt;
// status moves one way except along the refund branch, where a failed refund
// may be re-initiated.
type PaymentTransaction struct {
	ID                    models.ID
	OrderID               models.ID
	ExternalTransactionID *string
	Amount                models.Money
	Status                PaymentTransactionStatus
	Timestamps            models.Timestamps

	events []*events.Event
}

// NewPaymentTransaction creates a PENDING transaction for a charge attempt
func NewPaymentTransaction(orderID models.ID, amount models.Money) (*PaymentTransaction, error) {
	if !amount.IsPositive() {
		return nil, errors.New("charge amount must be positive")
	}

	return &PaymentTransaction{
		ID:         models.GenerateUUID(),
		OrderID:    orderID,
		Amount:     amount,
		Status:     PaymentStatusPending,
		Timestamps: models.NewTimestamps(),
	}, nil
}

// MarkSucceeded records a successful charge and the provider's transaction id
func (t *PaymentTransaction) MarkSucceeded(externalTransactionID string) error {
	if t.Status != PaymentStatusPending {
		return errors.Errorf("charge can only succeed from PENDING, got %s", t.Status)
	}

	t.ExternalTransactionID = &externalTransactionID
	t.Status = PaymentStatusSucceeded
	t.Timestamps = t.Timestamps.Update()

	t.recordEvent(events.NewEvent(t.ID, events.PaymentChargedEvent, PaymentChargedData{
		PaymentID:             t.ID,
		OrderID:               t.OrderID,
		Amount:                t.Amount,
		ExternalTransactionID: externalTransactionID,
	}))
	return nil
}

// MarkFailed records a declined or errored charge
func (t *PaymentTransaction) MarkFailed(reason string) error {
	if t.Status != PaymentStatusPending {
		return errors.Errorf("charge can only fail from PENDING, got %s", t.Status)
	}

	t.Status = PaymentStatusFailed
	t.Timestamps = t.Timestamps.Update()

	t.recordEvent(events.NewEvent(t.ID, events.PaymentDeclinedEvent, PaymentDeclinedData{
		PaymentID: t.ID,
		OrderID:   t.OrderID,
		Amount:    t.Amount,
		Reason:    reason,
	}))
	return nil
}

// Refundable reports whether a refund attempt may proceed. REFUND_INITIATED
// is included so a crashed refund can be re-driven.
func (t *PaymentTransaction) Refundable() bool {
	switch t.Status {
	case PaymentStatusSucceeded, PaymentStatusRefundInitiated, PaymentStatusRefundFailed:
		return true
	}
	return false
}

// InitiateRefund moves the transaction onto the refund branch
func (t *PaymentTransaction) InitiateRefund() error {
	if !t.Refundable() {
		return errors.Errorf("transaction in status %s is not refundable", t.Status)
	}

	t.Status = PaymentStatusRefundInitiated
	t.Timestamps = t.Timestamps.Update()
	return nil
}

// MarkRefunded records a completed refund
func (t *PaymentTransaction) MarkRefunded() error {
	if t.Status != PaymentStatusRefundInitiated {
		return errors.Errorf("refund can only complete from REFUND_INITIATED, got %s", t.Status)
	}

	t.Status = PaymentStatusRefunded
	t.Timestamps = t.Timestamps.Update()

	t.recordEvent(events.NewEvent(t.ID, events.PaymentRefundedEvent, PaymentRefundedData{
		PaymentID: t.ID,
		OrderID:   t.OrderID,
		Amount:    t.Amount,
	}))
	return nil
}

// MarkRefundFailed records a refund the provider rejected. This state needs
// operator attention; it must never be absorbed silently.
func (t *PaymentTransaction) MarkRefundFailed(reason string) error {
	if t.Status != PaymentStatusRefundInitiated {
		return errors.Errorf("refund can only fail from REFUND_INITIATED, got %s", t.Status)
	}

	t.Status = PaymentStatusRefundFailed
	t.Timestamps = t.Timestamps.Update()

	t.recordEvent(events.NewEvent(t.ID, events.PaymentRefundFailedEvent, PaymentRefundFailedData{
		PaymentID: t.ID,
		OrderID:   t.OrderID,
		Amount:    t.Amount,
		Reason:    reason,
	}))
	return nil
}

// Events returns domain events
func (t *PaymentTransaction) Events() []*events.Event {
	return t.events
}

// ClearEvents clears domain events
func (t *PaymentTransaction) ClearEvents() {
	t.events = make([]*events.Event, 0)
}

func (t *PaymentTransaction) recordEvent(event *events.Event) {
	t.events = append(t.events, event)
}

// Event Data Structures
type PaymentChargedData struct {
	PaymentID             models.ID    `json:"payment_id"`
	OrderID               models.ID    `json:"order_id"`
	Amount                models.Money `json:"amount"`
	ExternalTransactionID string       `json:"external_transaction_id"`
}

type PaymentDeclinedData struct {
	PaymentID models.ID    `json:"payment_id"`
	OrderID   models.ID    `json:"order_id"`
	Amount    models.Money `json:"amount"`
	Reason    string       `json:"reason"`
}

type PaymentRefundedData struct {
	PaymentID models.ID    `json:"payment_id"`
	OrderID   models.ID    `json:"order_id"`
	Amount    models.Money `json:"amount"`
}

type PaymentRefundFailedData struct {
	PaymentID models.ID    `json:"payment_id"`
	OrderID   models.ID    `json:"order_id"`
	Amount    models.Money `json:"amount"`
	Reason    string       `json:"reason"`
}

// PaymentTransactionRepository interface
type PaymentTransactionRepository interface {
	Save(ctx context.Context, transaction *PaymentTransaction) error
	Update(ctx context.Context, transaction *PaymentTransaction) error
	FindByID(ctx context.Context, id models.ID) (*PaymentTransaction, error)
}

// PaymentGateway is the external payment provider, modeled as an unreliable
// dependency.
type PaymentGateway interface {
	Charge(ctx context.Context, orderID models.ID, amount models.Money) (string, error)
	Refund(ctx context.Context, externalTransactionID string, amount models.Money) error
}
