package main

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/repository"
)

// seedDemoData loads a small catalog and two accounts so the in-memory
// backend is usable straight away:
//
//	customer@example.com / password
//	admin@example.com    / password
func seedDemoData(ctx context.Context, repo repository.Repository) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	users := []domain.User{
		{Email: "customer@example.com", Name: "Demo Customer", Role: domain.RoleCustomer, PasswordHash: string(hash)},
		{Email: "admin@example.com", Name: "Demo Admin", Role: domain.RoleAdmin, PasswordHash: string(hash)},
	}
	for i := range users {
		if err := repo.CreateUser(ctx, &users[i]); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", users[i].Email, err)
		}
	}

	products := []domain.Product{
		{
			Name: "Classic Tee", Description: "Plain cotton crew neck", Category: "shirts",
			Price: 100, Stock: 50, Sizes: []string{"S", "M", "L", "XL"},
			Colors: []string{"white", "black"}, Featured: true,
		},
		{
			Name: "Denim Jacket", Description: "Mid-wash trucker jacket", Category: "jackets",
			Price: 250, Stock: 20, Sizes: []string{"M", "L"},
			Colors: []string{"blue"}, Featured: true,
		},
		{
			Name: "Canvas Sneakers", Description: "Low-top lace-up", Category: "shoes",
			Price: 180, Stock: 35, Sizes: []string{"8", "9", "10", "11"},
			Colors: []string{"white", "red"},
		},
		{
			Name: "Bucket Hat", Description: "Reversible cotton twill", Category: "accessories",
			Price: 60, Stock: 80, Colors: []string{"beige", "olive"},
		},
	}
	for i := range products {
		if err := repo.CreateProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
	}

	return nil
}
