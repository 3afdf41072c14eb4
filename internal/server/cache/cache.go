// Package cache holds the read-through cart cache backing the
// storefront API. The repository stays the source of truth: entries are
// dropped on every cart write and age out on their own otherwise, so a
// lost invalidation heals within one TTL.
package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

// CartCache is what the cart service consults before hitting the
// repository. Get returns ErrCacheMiss when no cached cart exists.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// ErrCacheMiss tells the caller to fall through to the repository. It
// never reaches API clients.
var ErrCacheMiss = errors.New("cache miss")

// NopCache stands in when REDIS_ADDR is unset, as in local development.
// Every read misses, so the repository serves all traffic.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.Cart, error) { return nil, ErrCacheMiss }
func (NopCache) Set(context.Context, string, *domain.Cart) error   { return nil }
func (NopCache) Delete(context.Context, string) error              { return nil }
