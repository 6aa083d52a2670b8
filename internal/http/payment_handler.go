package http

import (
	"context"
	"net/http"
	"time"
)

type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64) (string, error)
}

type PaymentHandler struct {
	intents IntentCreator
	timeout time.Duration
}

func NewPaymentHandler(intents IntentCreator, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		intents: intents,
		timeout: timeout,
	}
}

type CreateIntentRequestDTO struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

type CreateIntentResponseDTO struct {
	ClientSecret string `json:"clientSecret"`
}

// POST /create-payment-intent
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateIntentRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	secret, err := h.intents.CreateIntent(ctx, req.Amount)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CreateIntentResponseDTO{ClientSecret: secret})
}
