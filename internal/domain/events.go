package domain

import "time"

// OrderCompleted is published once a payment has been recorded. Consumers
// clear the buyer's cart.
type OrderCompleted struct {
	EventID     string    `json:"event_id"`
	OrderID     string    `json:"order_id"`
	Email       string    `json:"email"`
	CompletedAt time.Time `json:"completed_at"`
}
