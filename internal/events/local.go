package events

import (
	"context"

	"github.com/fjod/go_petshop/internal/domain"
)

// LocalPublisher clears the cart in-process. It stands in for Kafka when no
// brokers are configured.
type LocalPublisher struct {
	carts CartClearer
}

func NewLocalPublisher(carts CartClearer) *LocalPublisher {
	return &LocalPublisher{carts: carts}
}

func (p *LocalPublisher) PublishOrderCompleted(ctx context.Context, event domain.OrderCompleted) error {
	_, err := p.carts.ClearCart(ctx, event.Email)
	return err
}
