package activities

import (
	"context"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"github.com/mercato/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.temporal.io/sdk/temporal"
)

// ChargePaymentInput identifies the order and the amount to capture
type ChargePaymentInput struct {
	OrderID models.ID    `json:"order_id"`
	Amount  models.Money `json:"amount"`
}

// ChargePaymentResult returns the recorded transaction
type ChargePaymentResult struct {
	TransactionID         models.ID `json:"transaction_id"`
	ExternalTransactionID string    `json:"external_transaction_id"`
}

// ChargePayment records a PENDING transaction, charges the gateway, and
// records the outcome. A definitive decline comes back as a non-retryable
// application error so the saga compensates instead of retrying.
func (a *Activities) ChargePayment(ctx context.Context, input ChargePaymentInput) (ChargePaymentResult, error) {
	transaction, err := domain.NewPaymentTransaction(input.OrderID, input.Amount)
	if err != nil {
		return ChargePaymentResult{}, errors.Wrap(err, "failed to create payment transaction")
	}

	if err := a.payments.Save(ctx, transaction); err != nil {
		return ChargePaymentResult{}, errors.Wrap(err, "failed to save payment transaction")
	}

	externalID, chargeErr := a.gateway.Charge(ctx, input.OrderID, input.Amount)
	if chargeErr != nil {
		if errors.Is(chargeErr, domain.ErrPaymentDeclined) {
			if err := transaction.MarkFailed(chargeErr.Error()); err != nil {
				return ChargePaymentResult{}, err
			}
			if err := a.payments.Update(ctx, transaction); err != nil {
				return ChargePaymentResult{}, errors.Wrap(err, "failed to record declined charge")
			}
			if err := a.publisher.Publish(ctx, transaction.Events()...); err != nil {
				return ChargePaymentResult{}, errors.Wrap(err, "failed to publish payment events")
			}

			telemetry.RecordCounter(ctx, "payments_declined_total", "Declined charges", 1)
			return ChargePaymentResult{}, temporal.NewNonRetryableApplicationError(
				chargeErr.Error(), domain.ErrTypePaymentDeclined, chargeErr)
		}

		// Transient gateway failure, the PENDING row stays behind and the
		// retry creates a fresh attempt.
		return ChargePaymentResult{}, errors.Wrap(chargeErr, "gateway charge failed")
	}

	if err := transaction.MarkSucceeded(externalID); err != nil {
		return ChargePaymentResult{}, err
	}
	if err := a.payments.Update(ctx, transaction); err != nil {
		return ChargePaymentResult{}, errors.Wrap(err, "failed to record successful charge")
	}
	if err := a.publisher.Publish(ctx, transaction.Events()...); err != nil {
		return ChargePaymentResult{}, errors.Wrap(err, "failed to publish payment events")
	}

	telemetry.RecordCounter(ctx, "payments_charged_total", "Successful charges", 1)

	return ChargePaymentResult{
		TransactionID:         transaction.ID,
		ExternalTransactionID: externalID,
	}, nil
}

// RefundPaymentInput identifies the transaction to refund
type RefundPaymentInput struct {
	TransactionID models.ID `json:"transaction_id"`
}

// RefundPayment returns a captured charge to the customer. Transactions that
// were never charged or are already refunded are skipped, so the activity can
// be retried and re-invoked freely. A refund the provider rejects leaves the
// transaction in REFUND_FAILED and surfaces the error for another attempt.
func (a *Activities) RefundPayment(ctx context.Context, input RefundPaymentInput) error {
	transaction, err := a.payments.FindByID(ctx, input.TransactionID)
	if err != nil {
		return errors.Wrap(err, "failed to load payment transaction")
	}
	if transaction == nil || !transaction.Refundable() {
		return nil
	}

	if err := transaction.InitiateRefund(); err != nil {
		return err
	}
	if err := a.payments.Update(ctx, transaction); err != nil {
		return errors.Wrap(err, "failed to record refund initiation")
	}

	if transaction.ExternalTransactionID == nil {
		return errors.Errorf("transaction %s has no external transaction id", transaction.ID)
	}

	if refundErr := a.gateway.Refund(ctx, *transaction.ExternalTransactionID, transaction.Amount); refundErr != nil {
		if err := transaction.MarkRefundFailed(refundErr.Error()); err != nil {
			return err
		}
		if err := a.payments.Update(ctx, transaction); err != nil {
			return errors.Wrap(err, "failed to record refund failure")
		}
		if err := a.publisher.Publish(ctx, transaction.Events()...); err != nil {
			return errors.Wrap(err, "failed to publish payment events")
		}

		telemetry.RecordCounter(ctx, "refunds_failed_total", "Failed refunds", 1)
		return errors.Wrap(refundErr, "gateway refund failed")
	}

	if err := transaction.MarkRefunded(); err != nil {
		return err
	}
	if err := a.payments.Update(ctx, transaction); err != nil {
		return errors.Wrap(err, "failed to record refund")
	}
	if err := a.publisher.Publish(ctx, transaction.Events()...); err != nil {
		return errors.Wrap(err, "failed to publish payment events")
	}

	telemetry.RecordCounter(ctx, "refunds_total", "Completed refunds", 1)
	return nil
}
