package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_storefront/internal/domain"
)

func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddCartItem(ctx context.Context, req domain.AddItemRequest) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart/items", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, http.MethodPut, "/api/v1/cart/items/"+itemID,
		domain.UpdateItemRequest{Quantity: quantity}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodDelete, "/api/v1/cart/items/"+itemID, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
