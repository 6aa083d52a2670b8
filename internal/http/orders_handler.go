package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	RecordPayment(ctx context.Context, payment *domain.Payment) (string, error)
	ListOrders(ctx context.Context) ([]domain.Payment, error)
	OrdersFor(ctx context.Context, email string) ([]domain.Payment, error)
	CountOrders(ctx context.Context, email string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	DeleteOrder(ctx context.Context, id string) error
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=Received Processing Shipped Delivered"`
}

type UpdateStatusResponseDTO struct {
	Message string             `json:"message"`
	Status  domain.OrderStatus `json:"status"`
}

type DeleteOrderResponseDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// POST /payments
func (h *OrdersHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var payment domain.Payment
	if err := decodeJSON(r, &payment); err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := h.orders.RecordPayment(ctx, &payment)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"acknowledged": true, "insertedId": id})
}

// GET /payments/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payments, err := h.orders.ListOrders(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nonNilPayments(payments))
}

// GET /payments/specific/order?email=
func (h *OrdersHandler) OrdersFor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email query parameter is required")
		return
	}

	payments, err := h.orders.OrdersFor(ctx, email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nonNilPayments(payments))
}

// GET /users/orders/count?email=
func (h *OrdersHandler) CountOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email query parameter is required")
		return
	}

	count, err := h.orders.CountOrders(ctx, email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"totalOrders": count})
}

// PATCH /orders/{id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateStatusRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	status := domain.OrderStatus(req.Status)
	if err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "id"), status); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UpdateStatusResponseDTO{
		Message: "Order status updated successfully",
		Status:  status,
	})
}

// DELETE /orders/{id}
func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.orders.DeleteOrder(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, DeleteOrderResponseDTO{
		Success: true,
		Message: "Order deleted successfully",
	})
}

func nonNilPayments(payments []domain.Payment) []domain.Payment {
	if payments == nil {
		return []domain.Payment{}
	}
	return payments
}
