package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_storefront/internal/domain"
)

// ProductFilter narrows a catalog listing. Zero values mean no filter.
type ProductFilter struct {
	Category string
	Size     string
	Color    string
}

func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Size != "" {
		q.Set("size", filter.Size)
	}
	if filter.Color != "" {
		q.Set("color", filter.Color)
	}

	path := "/api/v1/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/"+productID, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/featured", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	var opts domain.FilterOptions
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/filters", nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}
