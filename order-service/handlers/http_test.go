package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mercato/order-system/order-service/application"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/order-service/mocks"
	"github.com/mercato/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type httpFixture struct {
	products  *mocks.ProductRepository
	orders    *mocks.OrderRepository
	inventory *mocks.InventoryRepository
	starter   *mocks.SagaStarter
	router    *chi.Mux
}

func newHTTPFixture() *httpFixture {
	f := &httpFixture{
		products:  new(mocks.ProductRepository),
		orders:    new(mocks.OrderRepository),
		inventory: new(mocks.InventoryRepository),
		starter:   new(mocks.SagaStarter),
	}

	h := NewOrderHandlers(
		application.NewPlaceOrder(f.products, f.starter),
		application.NewGetOrder(f.orders),
		application.NewGetStock(f.inventory),
	)

	f.router = chi.NewRouter()
	h.RegisterRoutes(f.router)
	return f
}

func TestPlaceOrderEndpoint(t *testing.T) {
	f := newHTTPFixture()
	product := &domain.Product{ID: models.GenerateUUID(), Name: "Product A", Price: models.NewMoney(1000, "USD")}

	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return(map[models.ID]*domain.Product{
		product.ID: product,
	}, nil)
	f.starter.On("StartOrderSaga", mock.Anything, mock.Anything).Return("order-saga-abc", nil)

	body := `{
		"user_id": "` + models.GenerateUUID().String() + `",
		"user_email": "buyer@example.com",
		"items": [{"product_id": "` + product.ID.String() + `", "quantity": 2}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "order-saga-abc")
}

func TestPlaceOrderEndpoint_InvalidBody(t *testing.T) {
	f := newHTTPFixture()

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderEndpoint_ValidationFailure(t *testing.T) {
	f := newHTTPFixture()

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"user_email":"","items":[]}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderEndpoint(t *testing.T) {
	f := newHTTPFixture()
	order, err := domain.CreateOrder(
		models.GenerateUUID(), "buyer@example.com", models.NewMoney(2000, "USD"),
		[]domain.OrderItem{{ProductID: models.GenerateUUID(), Name: "A", Quantity: 2, PriceAtOrder: models.NewMoney(1000, "USD")}},
		"order-saga-abc")
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+order.ID.String(), nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"PENDING"`)
	assert.Contains(t, rec.Body.String(), `"order_reference":"order-saga-abc"`)
}

func TestGetOrderEndpoint_NotFound(t *testing.T) {
	f := newHTTPFixture()
	f.orders.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+models.GenerateUUID().String(), nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrderByReferenceEndpoint(t *testing.T) {
	f := newHTTPFixture()
	order, err := domain.CreateOrder(
		models.GenerateUUID(), "buyer@example.com", models.NewMoney(2000, "USD"),
		[]domain.OrderItem{{ProductID: models.GenerateUUID(), Name: "A", Quantity: 2, PriceAtOrder: models.NewMoney(1000, "USD")}},
		"order-saga-abc")
	require.NoError(t, err)

	f.orders.On("FindByWorkflowID", mock.Anything, "order-saga-abc").Return(order, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/reference/order-saga-abc", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetStockEndpoint(t *testing.T) {
	f := newHTTPFixture()
	productID := models.GenerateUUID()

	f.inventory.On("GetStockQuantity", mock.Anything, productID).Return(5, nil)

	req := httptest.NewRequest(http.MethodGet, "/products/"+productID.String()+"/stock", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":5`)
}

func TestGetStockEndpoint_UnknownProduct(t *testing.T) {
	f := newHTTPFixture()
	f.inventory.On("GetStockQuantity", mock.Anything, mock.Anything).Return(0, domain.ErrProductNotFound)

	req := httptest.NewRequest(http.MethodGet, "/products/"+models.GenerateUUID().String()+"/stock", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	f := newHTTPFixture()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
