package activities_test

import (
	"context"
	"testing"

	"github.com/mercato/order-system/order-service/activities"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/mocks"
	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
)

type inventoryFixture struct {
	inventory *mocks.InventoryRepository
	publisher *mocks.Publisher
	acts      *activities.Activities
}

func newInventoryFixture() *inventoryFixture {
	f := &inventoryFixture{
		inventory: new(mocks.InventoryRepository),
		publisher: new(mocks.Publisher),
	}
	f.acts = activities.NewActivities(
		new(mocks.OrderRepository), new(mocks.PaymentTransactionRepository), f.inventory,
		new(mocks.PaymentGateway), f.publisher)
	return f
}

func TestValidateAndDecreaseInventory_Success(t *testing.T) {
	f := newInventoryFixture()
	orderID := models.GenerateUUID()
	items := []domain.ItemQuantity{{ProductID: models.GenerateUUID(), Quantity: 2}}

	f.inventory.On("DecreaseStock", mock.Anything, orderID, items).Return(nil)

	err := f.acts.ValidateAndDecreaseInventory(context.Background(), activities.InventoryInput{
		OrderID: orderID,
		Items:   items,
	})

	require.NoError(t, err)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestValidateAndDecreaseInventory_Shortfall(t *testing.T) {
	f := newInventoryFixture()
	productID := models.GenerateUUID()

	f.inventory.On("DecreaseStock", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.InsufficientStockError{ProductID: productID, Requested: 5, Available: 2})
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(evts []*events.Event) bool {
		return len(evts) == 1 && evts[0].EventType == events.InventoryInsufficientEvent
	})).Return(nil)

	err := f.acts.ValidateAndDecreaseInventory(context.Background(), activities.InventoryInput{
		OrderID: models.GenerateUUID(),
		Items:   []domain.ItemQuantity{{ProductID: productID, Quantity: 5}},
	})

	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domain.ErrTypeInsufficientStock, appErr.Type())
	assert.True(t, appErr.NonRetryable())
	f.publisher.AssertExpectations(t)
}

func TestValidateAndDecreaseInventory_TransientError(t *testing.T) {
	f := newInventoryFixture()

	f.inventory.On("DecreaseStock", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	err := f.acts.ValidateAndDecreaseInventory(context.Background(), activities.InventoryInput{
		OrderID: models.GenerateUUID(),
		Items:   []domain.ItemQuantity{{ProductID: models.GenerateUUID(), Quantity: 1}},
	})

	require.Error(t, err)
	var appErr *temporal.ApplicationError
	assert.False(t, errors.As(err, &appErr), "transient failures must stay retryable")
}

func TestRestoreInventory(t *testing.T) {
	f := newInventoryFixture()
	orderID := models.GenerateUUID()
	items := []domain.ItemQuantity{{ProductID: models.GenerateUUID(), Quantity: 2}}

	f.inventory.On("IncreaseStock", mock.Anything, orderID, items).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(evts []*events.Event) bool {
		return len(evts) == 1 && evts[0].EventType == events.InventoryRestoredEvent
	})).Return(nil)

	err := f.acts.RestoreInventory(context.Background(), activities.InventoryInput{
		OrderID: orderID,
		Items:   items,
	})

	require.NoError(t, err)
	f.inventory.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}
