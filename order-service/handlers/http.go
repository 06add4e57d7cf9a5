package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mercato/order-system/order-service/application"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/pkg/errors"
)

// OrderHandlers contains order HTTP handlers
type OrderHandlers struct {
	placeOrder *application.PlaceOrder
	getOrder   *application.GetOrder
	getStock   *application.GetStock
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	placeOrder *application.PlaceOrder,
	getOrder *application.GetOrder,
	getStock *application.GetStock,
) *OrderHandlers {
	return &OrderHandlers{
		placeOrder: placeOrder,
		getOrder:   getOrder,
		getStock:   getStock,
	}
}

type orderResponse struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	UserEmail      string             `json:"user_email"`
	TotalAmount    int64              `json:"total_amount"`
	Currency       string             `json:"currency"`
	Status         string             `json:"status"`
	Items          []domain.OrderItem `json:"items"`
	OrderReference string             `json:"order_reference"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func toOrderResponse(order *domain.Order) orderResponse {
	return orderResponse{
		ID:             order.ID.String(),
		UserID:         order.UserID.String(),
		UserEmail:      order.UserEmail,
		TotalAmount:    order.TotalAmount.Amount,
		Currency:       order.TotalAmount.Currency,
		Status:         string(order.Status),
		Items:          order.Items,
		OrderReference: order.WorkflowID,
		CreatedAt:      order.Timestamps.CreatedAt,
		UpdatedAt:      order.Timestamps.UpdatedAt,
	}
}

// PlaceOrder handles order placement requests. The order is created by the
// saga, not here; the 202 response carries the reference to poll with.
func (h *OrderHandlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var input application.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.placeOrder.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, result)
}

// GetOrder handles order retrieval by id
func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.getOrder.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// GetOrderByReference handles order retrieval by saga reference
func (h *OrderHandlers) GetOrderByReference(w http.ResponseWriter, r *http.Request) {
	order, err := h.getOrder.ByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// GetStock handles stock level queries
func (h *OrderHandlers) GetStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	quantity, err := h.getStock.Execute(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
}

// Health reports process liveness
func (h *OrderHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.PlaceOrder)
		r.Get("/{id}", h.GetOrder)
		r.Get("/reference/{reference}", h.GetOrderByReference)
	})
	r.Get("/products/{id}/stock", h.GetStock)
	r.Get("/health", h.Health)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrProductNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
