package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 15 * time.Minute
	maxJitter  = 5 * time.Minute
	// generation keys must outlive any in-flight load by a wide margin
	generationTTL = 24 * time.Hour
)

// fillScript writes the cart only while the owner's generation still equals
// the one the caller observed before reading the store.
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then current = '0' end
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
	jitter  func() time.Duration
}

func NewRedisCache(client redis.UniversalClient, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = DefaultTTL
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
		jitter:  func() time.Duration { return rand.N(maxJitter) },
	}
}

func (r *RedisCache) Get(ctx context.Context, owner string) (*domain.Cart, error) {
	raw, err := r.client.Get(ctx, cartKey(owner)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("read cached cart: %w", err)
	}

	cart := new(domain.Cart)
	if err := json.Unmarshal(raw, cart); err != nil {
		return nil, fmt.Errorf("decode cached cart: %w", err)
	}
	return cart, nil
}

func (r *RedisCache) Generation(ctx context.Context, owner string) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(owner)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cart generation: %w", err)
	}
	return gen, nil
}

func (r *RedisCache) Fill(ctx context.Context, owner string, cart *domain.Cart, gen int64) (bool, error) {
	payload, err := json.Marshal(cart)
	if err != nil {
		return false, fmt.Errorf("encode cart: %w", err)
	}

	ttl := r.baseTTL + r.jitter()
	stored, err := fillScript.Run(ctx, r.client,
		[]string{cartKey(owner), generationKey(owner)},
		strconv.FormatInt(gen, 10), payload, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("fill cached cart: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the cached cart and bumps the generation in one
// transaction so fills that started earlier are rejected.
func (r *RedisCache) Invalidate(ctx context.Context, owner string) error {
	genKey := generationKey(owner)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, cartKey(owner))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached cart: %w", err)
	}
	return nil
}

// Keys share a hash tag so the script and transaction stay on one cluster slot.
func cartKey(owner string) string {
	return "cart:{" + owner + "}"
}

func generationKey(owner string) string {
	return "cart:{" + owner + "}:gen"
}
