package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_petshop/internal/domain"
)

// CartCache is a read-through cache of carts guarded by a per-owner
// generation. Every invalidation bumps the generation; a fill is accepted
// only if the generation read before loading the cart is still current, so a
// slow read can never put back a cart that a write has already replaced.
type CartCache interface {
	Get(ctx context.Context, owner string) (*domain.Cart, error)
	Generation(ctx context.Context, owner string) (int64, error)
	// Fill stores cart and reports whether it was stored.
	Fill(ctx context.Context, owner string, cart *domain.Cart, gen int64) (bool, error)
	Invalidate(ctx context.Context, owner string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Nop is used when no Redis address is configured. Every read misses.
type Nop struct{}

func (Nop) Get(context.Context, string) (*domain.Cart, error) { return nil, ErrCacheMiss }

func (Nop) Generation(context.Context, string) (int64, error) { return 0, nil }

func (Nop) Fill(context.Context, string, *domain.Cart, int64) (bool, error) { return false, nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
