package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/cache"
	"github.com/fjod/go_storefront/internal/server/repository"
)

// CartService owns the authoritative cart arithmetic. Unit prices are
// snapshotted from the catalog when a line is added; the total is
// recomputed server-side on every mutation and returned with the full
// cart, which is the contract clients replace their state from.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	sfg      singleflight.Group // prevents cache stampede on reads
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, c cache.CartCache) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    c,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Singleflight collapses concurrent cache misses for the same user.
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.carts.GetCart(ctx, userID)
		if errors.Is(errGet, repository.ErrNotFound) {
			return emptyCart(userID), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem appends a line for the product, snapshotting the catalog price
// at add time. Quantity is checked against stock counting what the cart
// already holds; a conflict is returned structured, not as a bare error
// string. Lines are never merged: adding the same product twice makes
// two lines, removal is always explicit.
func (s *CartService) AddItem(ctx context.Context, userID string, req domain.AddItemRequest) (*domain.Cart, error) {
	product, err := s.products.GetProduct(ctx, req.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		cart = emptyCart(userID)
	} else if err != nil {
		return nil, err
	}

	inCart := 0
	for _, item := range cart.Items {
		if item.ProductID == req.ProductID {
			inCart += item.Quantity
		}
	}
	if inCart+req.Quantity > product.Stock {
		return nil, &StockConflictError{
			ProductID: req.ProductID,
			Available: product.Stock,
			InCart:    inCart,
			Requested: req.Quantity,
		}
	}

	cart.Items = append(cart.Items, domain.CartItem{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price, // snapshot; later price changes don't touch this line
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})

	return s.saveCart(ctx, cart)
}

// UpdateItem sets a line's quantity, re-checking stock for the line's
// product across the whole cart.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range cart.Items {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	product, err := s.products.GetProduct(ctx, cart.Items[idx].ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	elsewhere := 0
	for i, item := range cart.Items {
		if i != idx && item.ProductID == product.ID {
			elsewhere += item.Quantity
		}
	}
	if elsewhere+quantity > product.Stock {
		return nil, &StockConflictError{
			ProductID: product.ID,
			Available: product.Stock,
			InCart:    elsewhere + cart.Items[idx].Quantity,
			Requested: quantity,
		}
	}

	cart.Items[idx].Quantity = quantity
	return s.saveCart(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range cart.Items {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return s.saveCart(ctx, cart)
}

func (s *CartService) DeleteCart(ctx context.Context, userID string) error {
	err := s.carts.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	s.invalidate(userID)
	return nil
}

// saveCart recomputes the total, persists and returns the full cart.
func (s *CartService) saveCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.TotalAmount = cartTotal(cart.Items)
	if err := s.carts.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}
	s.invalidate(cart.UserID)
	return cart, nil
}

func (s *CartService) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func cartTotal(items []domain.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

func emptyCart(userID string) *domain.Cart {
	now := time.Now()
	return &domain.Cart{
		UserID:    userID,
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
