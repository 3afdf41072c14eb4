package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/service"
)

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req domain.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondFieldErrors(w, "productId is required", map[string]string{"productId": "required"})
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondFieldErrors(w, "quantity must be between 1 and 99", map[string]string{"quantity": "must be between 1 and 99"})
		return
	}

	cart, err := h.carts.AddItem(r.Context(), userIDFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cart)
}

// PUT /api/v1/cart/items/{item_id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	var req domain.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, "invalid JSON body")
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondFieldErrors(w, "quantity must be between 1 and 99", map[string]string{"quantity": "must be between 1 and 99"})
		return
	}

	cart, err := h.carts.UpdateItem(r.Context(), userIDFromContext(r.Context()), itemID, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// DELETE /api/v1/cart/items/{item_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	cart, err := h.carts.RemoveItem(r.Context(), userIDFromContext(r.Context()), itemID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}
