// Package cart holds the client-side view of the shopping cart. The
// server owns the cart; every mutation is a full round trip whose
// response replaces the local state wholesale. The store never sums
// prices itself: TotalAmount is whatever the server last said.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

var (
	// ErrBusy rejects a mutation while another is still in flight.
	// Mutations are serialized; there is no optimistic merge to fall
	// back on.
	ErrBusy = errors.New("cart operation already in flight")

	// ErrNotAuthenticated rejects cart use without a valid session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAdminAccount rejects cart use by admin accounts, which have
	// no cart.
	ErrAdminAccount = errors.New("admin accounts have no cart")
)

// PartialClearError reports a Clear that failed partway. Removed items
// are gone server-side; the rest are still in the cart. Callers should
// reload.
type PartialClearError struct {
	Removed int
	Err     error
}

func (e *PartialClearError) Error() string {
	return fmt.Sprintf("cart clear stopped after removing %d item(s): %v", e.Removed, e.Err)
}

func (e *PartialClearError) Unwrap() error { return e.Err }

// State of the store. Failures never leave a terminal error state; they
// revert to Empty with the error surfaced to the caller.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

// API is the slice of the storefront client the store needs.
type API interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, req domain.AddItemRequest) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, itemID string, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, itemID string) (*domain.Cart, error)
}

// Session is the token-holder surface the store gates on.
type Session interface {
	Valid() bool
	IsAdmin() bool
}

type Store struct {
	api     API
	session Session

	mu    sync.Mutex
	state State
	cart  *domain.Cart
	busy  bool
}

func NewStore(api API, session Session) *Store {
	return &Store{api: api, session: session}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cart returns a copy of the current cart, or nil when Empty.
func (s *Store) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return nil
	}
	c := *s.cart
	c.Items = append([]domain.CartItem(nil), s.cart.Items...)
	return &c
}

// TotalAmount is the server-computed total from the last response.
func (s *Store) TotalAmount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.TotalAmount
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	return len(s.cart.Items)
}

func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Load fetches the authoritative cart. An authentication failure is
// passed through as api.ErrAuthRequired so the UI can prompt re-login
// distinctly from other failures.
func (s *Store) Load(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	cart, err := s.api.GetCart(ctx)
	if err != nil {
		s.revert()
		return err
	}
	s.replace(cart)
	return nil
}

// AddItem adds a product line. On a stock conflict the returned error is
// a *api.StockConflictError carrying available stock and in-cart
// quantity so the caller can adjust the request.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int, unitPrice float64, size, color string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	cart, err := s.api.AddCartItem(ctx, domain.AddItemRequest{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Size:      size,
		Color:     color,
	})
	if err != nil {
		return err
	}
	s.replace(cart)
	return nil
}

// UpdateItem changes a line's quantity. Quantities below 1 are clamped
// to 1 before the request goes out: dropping to zero is not a removal
// path, RemoveItem is.
func (s *Store) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if quantity < 1 {
		quantity = 1
	}

	cart, err := s.api.UpdateCartItem(ctx, itemID, quantity)
	if err != nil {
		return err
	}
	s.replace(cart)
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	cart, err := s.api.RemoveCartItem(ctx, itemID)
	if err != nil {
		return err
	}
	s.replace(cart)
	return nil
}

// Clear empties the cart by removing every item individually. This is
// not atomic: a failure partway leaves a partially cleared cart, which
// is reported as a *PartialClearError so the caller knows to reload.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	var ids []string
	if s.cart != nil {
		for _, item := range s.cart.Items {
			ids = append(ids, item.ID)
		}
	}
	s.mu.Unlock()

	for i, id := range ids {
		cart, err := s.api.RemoveCartItem(ctx, id)
		if err != nil {
			return &PartialClearError{Removed: i, Err: err}
		}
		s.replace(cart)
	}

	s.mu.Lock()
	s.state = StateEmpty
	s.cart = nil
	s.mu.Unlock()
	return nil
}

// Reset drops local state without touching the server. Called on logout,
// when the server-side cart is no longer ours to see.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateEmpty
	s.cart = nil
}

func (s *Store) guard() error {
	if !s.session.Valid() {
		return ErrNotAuthenticated
	}
	if s.session.IsAdmin() {
		return ErrAdminAccount
	}
	return nil
}

func (s *Store) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

// replace installs the server's cart wholesale. Never merged with local
// state, so the displayed total always matches server arithmetic.
func (s *Store) replace(cart *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart
	if cart == nil || len(cart.Items) == 0 {
		s.state = StateEmpty
		return
	}
	s.state = StateLoaded
}

func (s *Store) revert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateEmpty
	s.cart = nil
}
