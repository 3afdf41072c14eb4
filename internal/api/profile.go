package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_storefront/internal/domain"
)

func (c *Client) GetProfile(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPut, "/api/v1/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveAddress appends a freshly entered address to the user's profile.
// Checkout calls this fire-and-forget; its failure never blocks an order.
func (c *Client) SaveAddress(ctx context.Context, addr domain.Address) error {
	user, err := c.GetProfile(ctx)
	if err != nil {
		return err
	}
	_, err = c.UpdateProfile(ctx, domain.UpdateProfileRequest{
		Addresses: append(user.Addresses, addr),
	})
	return err
}
