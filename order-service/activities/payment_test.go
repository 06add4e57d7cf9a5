package activities_test

import (
	"context"
	"testing"

	"github.com/mercato/order-system/order-service/activities"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/mocks"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
)

type paymentFixture struct {
	payments  *mocks.PaymentTransactionRepository
	gateway   *mocks.PaymentGateway
	publisher *mocks.Publisher
	acts      *activities.Activities
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payments:  new(mocks.PaymentTransactionRepository),
		gateway:   new(mocks.PaymentGateway),
		publisher: new(mocks.Publisher),
	}
	f.acts = activities.NewActivities(
		new(mocks.OrderRepository), f.payments, new(mocks.InventoryRepository), f.gateway, f.publisher)
	return f
}

func TestChargePayment_Success(t *testing.T) {
	f := newPaymentFixture()
	orderID := models.GenerateUUID()
	amount := models.NewMoney(2000, "USD")

	f.payments.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("Charge", mock.Anything, orderID, amount).Return("ch_123", nil)
	f.payments.On("Update", mock.Anything, mock.MatchedBy(func(tx *domain.PaymentTransaction) bool {
		return tx.Status == domain.PaymentStatusSucceeded
	})).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.acts.ChargePayment(context.Background(), activities.ChargePaymentInput{
		OrderID: orderID,
		Amount:  amount,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.TransactionID)
	assert.Equal(t, "ch_123", result.ExternalTransactionID)
	f.payments.AssertExpectations(t)
}

func TestChargePayment_Declined(t *testing.T) {
	f := newPaymentFixture()
	orderID := models.GenerateUUID()

	f.payments.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.Wrap(domain.ErrPaymentDeclined, "over limit"))
	f.payments.On("Update", mock.Anything, mock.MatchedBy(func(tx *domain.PaymentTransaction) bool {
		return tx.Status == domain.PaymentStatusFailed
	})).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.acts.ChargePayment(context.Background(), activities.ChargePaymentInput{
		OrderID: orderID,
		Amount:  models.NewMoney(1_000_000, "USD"),
	})

	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domain.ErrTypePaymentDeclined, appErr.Type())
	assert.True(t, appErr.NonRetryable())
	f.payments.AssertExpectations(t)
}

func TestChargePayment_TransientGatewayError(t *testing.T) {
	f := newPaymentFixture()

	f.payments.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("gateway timeout"))

	_, err := f.acts.ChargePayment(context.Background(), activities.ChargePaymentInput{
		OrderID: models.GenerateUUID(),
		Amount:  models.NewMoney(2000, "USD"),
	})

	require.Error(t, err)
	var appErr *temporal.ApplicationError
	assert.False(t, errors.As(err, &appErr), "transient failures must stay retryable")
}

func TestRefundPayment_Success(t *testing.T) {
	f := newPaymentFixture()
	transaction, err := domain.NewPaymentTransaction(models.GenerateUUID(), models.NewMoney(2000, "USD"))
	require.NoError(t, err)
	require.NoError(t, transaction.MarkSucceeded("ch_123"))
	transaction.ClearEvents()

	f.payments.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)
	f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("Refund", mock.Anything, "ch_123", transaction.Amount).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	err = f.acts.RefundPayment(context.Background(), activities.RefundPaymentInput{TransactionID: transaction.ID})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, transaction.Status)
	f.gateway.AssertExpectations(t)
}

func TestRefundPayment_SkipsNonRefundable(t *testing.T) {
	tests := []struct {
		name      string
		configure func(t *testing.T, f *paymentFixture)
	}{
		{
			name: "transaction not found",
			configure: func(t *testing.T, f *paymentFixture) {
				f.payments.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)
			},
		},
		{
			name: "never charged",
			configure: func(t *testing.T, f *paymentFixture) {
				tx, err := domain.NewPaymentTransaction(models.GenerateUUID(), models.NewMoney(100, "USD"))
				require.NoError(t, err)
				f.payments.On("FindByID", mock.Anything, mock.Anything).Return(tx, nil)
			},
		},
		{
			name: "already refunded",
			configure: func(t *testing.T, f *paymentFixture) {
				tx, err := domain.NewPaymentTransaction(models.GenerateUUID(), models.NewMoney(100, "USD"))
				require.NoError(t, err)
				require.NoError(t, tx.MarkSucceeded("ch_1"))
				require.NoError(t, tx.InitiateRefund())
				require.NoError(t, tx.MarkRefunded())
				f.payments.On("FindByID", mock.Anything, mock.Anything).Return(tx, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			tt.configure(t, f)

			err := f.acts.RefundPayment(context.Background(), activities.RefundPaymentInput{
				TransactionID: models.GenerateUUID(),
			})

			require.NoError(t, err)
			f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRefundPayment_ProviderRejects(t *testing.T) {
	f := newPaymentFixture()
	transaction, err := domain.NewPaymentTransaction(models.GenerateUUID(), models.NewMoney(2000, "USD"))
	require.NoError(t, err)
	require.NoError(t, transaction.MarkSucceeded("ch_123"))
	transaction.ClearEvents()

	f.payments.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)
	f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("Refund", mock.Anything, "ch_123", transaction.Amount).
		Return(errors.New("refund rejected by provider"))
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	err = f.acts.RefundPayment(context.Background(), activities.RefundPaymentInput{TransactionID: transaction.ID})

	require.Error(t, err)
	assert.Equal(t, domain.PaymentStatusRefundFailed, transaction.Status)
}
