// Package mocks provides testify mocks for the order service interfaces.
package mocks

import (
	"context"

	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/workflow"
	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/stretchr/testify/mock"
)

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, orderID models.ID, status domain.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) FindByWorkflowID(ctx context.Context, workflowID string) (*domain.Order, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type PaymentTransactionRepository struct {
	mock.Mock
}

func (m *PaymentTransactionRepository) Save(ctx context.Context, transaction *domain.PaymentTransaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *PaymentTransactionRepository) Update(ctx context.Context, transaction *domain.PaymentTransaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *PaymentTransactionRepository) FindByID(ctx context.Context, id models.ID) (*domain.PaymentTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentTransaction), args.Error(1)
}

type InventoryRepository struct {
	mock.Mock
}

func (m *InventoryRepository) DecreaseStock(ctx context.Context, orderID models.ID, items []domain.ItemQuantity) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *InventoryRepository) IncreaseStock(ctx context.Context, orderID models.ID, items []domain.ItemQuantity) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *InventoryRepository) GetStockQuantity(ctx context.Context, productID models.ID) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) FindByID(ctx context.Context, id models.ID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *ProductRepository) FindByIDs(ctx context.Context, ids []models.ID) (map[models.ID]*domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.ID]*domain.Product), args.Error(1)
}

type PaymentGateway struct {
	mock.Mock
}

func (m *PaymentGateway) Charge(ctx context.Context, orderID models.ID, amount models.Money) (string, error) {
	args := m.Called(ctx, orderID, amount)
	return args.String(0), args.Error(1)
}

func (m *PaymentGateway) Refund(ctx context.Context, externalTransactionID string, amount models.Money) error {
	args := m.Called(ctx, externalTransactionID, amount)
	return args.Error(0)
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, evts ...*events.Event) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

type EmailSender struct {
	mock.Mock
}

func (m *EmailSender) SendConfirmation(ctx context.Context, email string, orderID models.ID) error {
	args := m.Called(ctx, email, orderID)
	return args.Error(0)
}

func (m *EmailSender) SendFailure(ctx context.Context, email string, orderID models.ID, reason string) error {
	args := m.Called(ctx, email, orderID, reason)
	return args.Error(0)
}

type SagaStarter struct {
	mock.Mock
}

func (m *SagaStarter) StartOrderSaga(ctx context.Context, input workflow.OrderSagaInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
