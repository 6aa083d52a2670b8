package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CartService is what the cart endpoints need from the service layer.
type CartService interface {
	GetCart(ctx context.Context, owner string) (*domain.Cart, error)
	AddItem(ctx context.Context, owner string, item domain.CartItem) (domain.AddResult, error)
	ReplaceCart(ctx context.Context, owner string, items []domain.CartItem) (domain.WriteAck, error)
	RemoveItem(ctx context.Context, owner, petID string) (domain.WriteAck, error)
	ClearCart(ctx context.Context, owner string) (int64, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	Owner string           `json:"owner" validate:"required"`
	Item  *domain.CartItem `json:"item" validate:"required"`
}

type ReplaceCartRequestDTO struct {
	Owner string            `json:"owner" validate:"required"`
	Items []domain.CartItem `json:"items"`
}

type AddItemResponseDTO struct {
	Status domain.AddOutcome `json:"status"`
	Items  []domain.CartItem `json:"items"`
}

type ClearCartResponseDTO struct {
	Success      bool   `json:"success"`
	DeletedCount int64  `json:"deletedCount"`
	Message      string `json:"message"`
}

// POST /cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	res, err := h.carts.AddItem(ctx, req.Owner, *req.Item)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusOK
	if res.Outcome == domain.OutcomeAdded {
		status = http.StatusCreated
	}
	respondJSON(w, status, AddItemResponseDTO{Status: res.Outcome, Items: nonNilItems(res.Items)})
}

// POST /carts
func (h *CartHandler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ReplaceCartRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	ack, err := h.carts.ReplaceCart(ctx, req.Owner, req.Items)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ack)
}

// GET /carts?owner=
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner := r.URL.Query().Get("owner")
	if owner == "" {
		owner = r.URL.Query().Get("email")
	}
	if owner == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "owner query parameter is required")
		return
	}

	cart, err := h.carts.GetCart(ctx, owner)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nonNilItems(cart.Items))
}

// DELETE /carts/{owner}/{petId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ack, err := h.carts.RemoveItem(ctx, chi.URLParam(r, "owner"), chi.URLParam(r, "petId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ack)
}

// DELETE /cart/clear/{owner}
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	deleted, err := h.carts.ClearCart(ctx, chi.URLParam(r, "owner"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ClearCartResponseDTO{
		Success:      true,
		DeletedCount: deleted,
		Message:      fmt.Sprintf("%d cart(s) deleted", deleted),
	})
}

func nonNilItems(items []domain.CartItem) []domain.CartItem {
	if items == nil {
		return []domain.CartItem{}
	}
	return items
}
