package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_petshop/internal/cache"
	"github.com/fjod/go_petshop/internal/domain"
	"github.com/fjod/go_petshop/internal/logger"
	"github.com/fjod/go_petshop/internal/metrics"
	"github.com/fjod/go_petshop/internal/repository"
	"golang.org/x/sync/singleflight"
)

const (
	cacheOpTimeout = time.Second
	// loadTimeout bounds a shared cart load; it is detached from any single
	// caller so one cancelled request cannot fail the others waiting on it.
	loadTimeout = 10 * time.Second
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	log     *logger.Logger
	metrics *metrics.Metrics
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, c cache.CartCache, log *logger.Logger, m *metrics.Metrics) *CartService {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CartService{
		repo:    repo,
		cache:   c,
		log:     log,
		metrics: m,
	}
}

// GetCart returns the owner's cart, or an empty cart when none exists yet.
func (s *CartService) GetCart(ctx context.Context, owner string) (*domain.Cart, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	ctx = s.log.WithOwner(ctx, owner)

	ch := s.sfg.DoChan(owner, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.loadCart(loadCtx, owner)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	cart := res.Val.(*domain.Cart)
	if cart.Items == nil {
		empty := *cart
		empty.Items = []domain.CartItem{}
		return &empty, nil
	}
	return cart, nil
}

func (s *CartService) loadCart(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := s.cache.Get(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn(ctx, "cache get failed", err) // continue with the store
	}

	// read before the store so a write that lands during the read is seen
	gen, errGen := s.cache.Generation(ctx, owner)
	if errGen != nil {
		s.log.Warn(ctx, "cache generation read failed", errGen)
	}

	cart, err = s.repo.GetCart(ctx, owner)
	if errors.Is(err, repository.ErrCartNotFound) {
		return &domain.Cart{Owner: owner, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, s.storeFailure(ctx, "get cart", err)
	}
	if errGen != nil {
		return cart, nil
	}

	fillCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	stored, err := s.cache.Fill(fillCtx, owner, cart, gen)
	switch {
	case err != nil:
		s.log.Warn(ctx, "cache fill failed", err)
	case !stored:
		s.log.Debug(ctx, "cart changed during load, cache fill skipped")
	}
	return cart, nil
}

// AddItem merges item into the owner's cart. A pet that is already in the
// cart is reported as OutcomeAlreadyExists and nothing is written.
func (s *CartService) AddItem(ctx context.Context, owner string, item domain.CartItem) (domain.AddResult, error) {
	if err := requireOwner(owner); err != nil {
		return domain.AddResult{}, err
	}
	if err := requirePetID(item.PetID); err != nil {
		return domain.AddResult{}, err
	}
	ctx = s.log.WithOwner(ctx, owner)

	result, err := s.repo.AddItem(ctx, owner, item)
	if err != nil {
		s.metrics.ObserveCartOp("add_item", "error")
		return domain.AddResult{}, s.storeFailure(ctx, "add item", err)
	}
	s.metrics.ObserveCartOp("add_item", string(result.Outcome))

	if result.Outcome == domain.OutcomeAdded {
		s.invalidateCache(ctx, owner)
	} else {
		s.log.Debug(ctx, fmt.Sprintf("pet %s already in cart", item.PetID))
	}
	return result, nil
}

// ReplaceCart overwrites the owner's items with exactly the given sequence.
func (s *CartService) ReplaceCart(ctx context.Context, owner string, items []domain.CartItem) (domain.WriteAck, error) {
	if err := requireOwner(owner); err != nil {
		return domain.WriteAck{}, err
	}
	for _, item := range items {
		if err := requirePetID(item.PetID); err != nil {
			return domain.WriteAck{}, err
		}
	}
	ctx = s.log.WithOwner(ctx, owner)

	ack, err := s.repo.ReplaceItems(ctx, owner, items)
	if err != nil {
		s.metrics.ObserveCartOp("replace_cart", "error")
		return domain.WriteAck{}, s.storeFailure(ctx, "replace cart", err)
	}
	s.metrics.ObserveCartOp("replace_cart", "ok")

	s.invalidateCache(ctx, owner)
	return ack, nil
}

// RemoveItem pulls petID from the owner's cart. Missing carts and items are
// not errors.
func (s *CartService) RemoveItem(ctx context.Context, owner, petID string) (domain.WriteAck, error) {
	if err := requireOwner(owner); err != nil {
		return domain.WriteAck{}, err
	}
	if err := requirePetID(petID); err != nil {
		return domain.WriteAck{}, err
	}
	ctx = s.log.WithOwner(ctx, owner)

	ack, err := s.repo.RemoveItem(ctx, owner, petID)
	if err != nil {
		s.metrics.ObserveCartOp("remove_item", "error")
		return domain.WriteAck{}, s.storeFailure(ctx, "remove item", err)
	}
	s.metrics.ObserveCartOp("remove_item", "ok")

	s.invalidateCache(ctx, owner)
	return ack, nil
}

// ClearCart deletes the owner's cart and reports how many documents went.
func (s *CartService) ClearCart(ctx context.Context, owner string) (int64, error) {
	if err := requireOwner(owner); err != nil {
		return 0, err
	}
	ctx = s.log.WithOwner(ctx, owner)

	deleted, err := s.repo.DeleteCarts(ctx, owner)
	if err != nil {
		s.metrics.ObserveCartOp("clear_cart", "error")
		return 0, s.storeFailure(ctx, "clear cart", err)
	}
	s.metrics.ObserveCartOp("clear_cart", "ok")

	s.invalidateCache(ctx, owner)
	return deleted, nil
}

func (s *CartService) invalidateCache(ctx context.Context, owner string) {
	invCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOpTimeout)
	defer cancel()
	if err := s.cache.Invalidate(invCtx, owner); err != nil {
		s.log.Warn(ctx, "cache invalidate failed", err)
	}
}

func (s *CartService) storeFailure(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", err)
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreFailure, op, err)
}

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return fmt.Errorf("%w: owner is required", domain.ErrInvalidRequest)
	}
	return nil
}

func requirePetID(petID string) error {
	if strings.TrimSpace(petID) == "" {
		return fmt.Errorf("%w: petId is required", domain.ErrInvalidRequest)
	}
	return nil
}
