package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_storefront/internal/domain"
)

const (
	keyPrefix     = "storefront:cart:"
	defaultTTL    = 15 * time.Minute
	defaultJitter = 5 * time.Minute
)

// RedisCache stores carts as JSON blobs keyed by user. A cart is small
// enough that whole-document storage beats per-field hashes here.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	jitter time.Duration
}

type Option func(*RedisCache)

// WithCartTTL overrides how long a cached cart lives. Each entry gets
// up to jitter extra so carts cached in the same burst do not expire
// together.
func WithCartTTL(ttl, jitter time.Duration) Option {
	return func(r *RedisCache) {
		r.ttl = ttl
		r.jitter = jitter
	}
}

func NewRedisCache(client *redis.Client, opts ...Option) *RedisCache {
	r := &RedisCache{client: client, ttl: defaultTTL, jitter: defaultJitter}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cached cart: %w", err)
	}
	return &cart, nil
}

func (r *RedisCache) Set(ctx context.Context, userID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+userID, data, r.entryTTL()).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisCache) entryTTL() time.Duration {
	if r.jitter <= 0 {
		return r.ttl
	}
	return r.ttl + rand.N(r.jitter)
}
