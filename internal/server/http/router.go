// Package http is the REST surface of the storefront dev backend: the
// collaborator the client half talks to. Mutating cart and order
// endpoints return the full updated resource, which is the contract the
// client's full-state replace depends on.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/fjod/go_storefront/internal/server/service"
)

type RouterConfig struct {
	Repo           repository.Repository
	Carts          *service.CartService
	Orders         *service.OrderService
	Issuer         *TokenIssuer
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Repo, cfg.Issuer)
	cartHandler := NewCartHandler(cfg.Carts)
	ordersHandler := NewOrdersHandler(cfg.Orders)
	productHandler := NewProductHandler(cfg.Repo)
	profileHandler := NewProfileHandler(cfg.Repo)
	chatHandler := NewChatHandler(cfg.Repo)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Catalog is public
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/featured", productHandler.Featured)
			r.Get("/filters", productHandler.FilterOptions)
			r.Get("/{product_id}", productHandler.Get)
		})

		// Everything below requires a bearer token
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Issuer))

			r.Route("/cart", func(r chi.Router) {
				r.Use(RejectAdmin)
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{item_id}", cartHandler.UpdateItem)
				r.Delete("/items/{item_id}", cartHandler.RemoveItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", ordersHandler.Create)
				r.Get("/", ordersHandler.List)
				r.Get("/{order_id}", ordersHandler.Get)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.Get)
				r.Put("/", profileHandler.Update)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", chatHandler.CreateConversation)
				r.Get("/", chatHandler.ListConversations)
				r.Post("/{conversation_id}/messages", chatHandler.PostMessage)
				r.Get("/{conversation_id}/messages", chatHandler.ListMessages)
				r.Put("/{conversation_id}/status", chatHandler.UpdateStatus)
			})
		})
	})

	return r
}
