// Package checkout turns a loaded cart into an order through a linear
// four-stage wizard. The orchestrator collects address, delivery and
// payment state, computes the delivery fee client-side for display, and
// emits exactly one order-creation request at the review stage. The
// server remains the sole authority on totals and stock.
package checkout

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/api"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
)

var (
	// ErrEmptyCart blocks checkout entry without items to buy.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrAtFirstStep rejects a backward transition from the address step.
	ErrAtFirstStep = errors.New("already at the first step")

	// ErrNotAtReview rejects placing an order anywhere but the review step.
	ErrNotAtReview = errors.New("order can only be placed at the review step")

	// ErrAlreadyPlaced rejects a second submission of the same checkout.
	// One wizard run produces at most one order.
	ErrAlreadyPlaced = errors.New("order already placed")
)

// API is the slice of the storefront client the orchestrator needs.
type API interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	SaveAddress(ctx context.Context, addr domain.Address) error
}

// Session gates entry and order submission on token validity.
type Session interface {
	Valid() bool
}

// Orchestrator drives one checkout flow. Not safe for concurrent use;
// it models a single user walking a wizard.
type Orchestrator struct {
	api     API
	session Session
	cart    *cart.Store

	step         Step
	address      domain.Address
	freshAddress bool
	method       domain.DeliveryMethod
	payment      domain.PaymentMethod
	details      domain.PaymentDetails
	fee          float64
	placed       bool

	wg sync.WaitGroup
}

// Begin starts a checkout. Entry requires a valid session and a
// non-empty cart; otherwise the caller redirects away before the first
// step is ever shown.
func Begin(apiClient API, session Session, cartStore *cart.Store) (*Orchestrator, error) {
	if !session.Valid() {
		return nil, api.ErrAuthRequired
	}
	if cartStore.Len() == 0 {
		return nil, ErrEmptyCart
	}

	o := &Orchestrator{
		api:     apiClient,
		session: session,
		cart:    cartStore,
		step:    StepAddress,
		method:  domain.DeliveryStandard,
	}
	o.recomputeFee()
	return o, nil
}

func (o *Orchestrator) Step() Step { return o.step }

// SetAddress records the shipping address. fresh marks an address typed
// in rather than picked from the saved profile list; fresh addresses are
// persisted to the profile when the step commits.
func (o *Orchestrator) SetAddress(addr domain.Address, fresh bool) {
	o.address = addr
	o.freshAddress = fresh
	o.recomputeFee()
}

func (o *Orchestrator) Address() domain.Address { return o.address }

// SetDeliveryMethod selects the shipping method and recomputes the fee.
func (o *Orchestrator) SetDeliveryMethod(method domain.DeliveryMethod) {
	o.method = method
	o.recomputeFee()
}

func (o *Orchestrator) DeliveryMethod() domain.DeliveryMethod { return o.method }

// Fee is the delivery fee for the current (region, method) pair. It is
// recomputed on every input change, never carried stale across steps.
func (o *Orchestrator) Fee() float64 { return o.fee }

// SetPayment selects the payment method. details may be zero for cash
// on delivery; for gcash and paymaya it must be fully populated by the
// time the payment step validates.
func (o *Orchestrator) SetPayment(method domain.PaymentMethod, details domain.PaymentDetails) {
	o.payment = method
	o.details = details
}

func (o *Orchestrator) PaymentMethod() domain.PaymentMethod { return o.payment }

// Next validates the current step and advances. A validation failure
// blocks the transition and is returned as FieldErrors.
func (o *Orchestrator) Next(ctx context.Context) error {
	if o.step >= StepReview {
		return ErrNotAtReview
	}

	s := stages[o.step]
	if err := s.validate(o); err != nil {
		return err
	}
	s.commit(ctx, o)
	o.step++
	return nil
}

// Back moves one step backward. Allowed from every step except the first.
func (o *Orchestrator) Back() error {
	if o.step == StepAddress {
		return ErrAtFirstStep
	}
	o.step--
	return nil
}

// PlaceOrder submits the order built from the live cart snapshot plus
// the collected address, delivery and payment state. Token freshness is
// re-checked first: checkout may have been open a long time, and an
// expired session must short-circuit to the login path without any
// request being made. At most one submission goes out per orchestrator.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	if o.step != StepReview {
		return nil, ErrNotAtReview
	}
	if o.placed {
		return nil, ErrAlreadyPlaced
	}
	if !o.session.Valid() {
		return nil, api.ErrAuthRequired
	}

	snapshot := o.cart.Cart()
	if snapshot == nil || len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(snapshot.Items))
	for _, it := range snapshot.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		})
	}

	req := domain.CreateOrderRequest{
		Items:           items,
		ShippingAddress: o.address,
		DeliveryMethod:  o.method,
		PaymentMethod:   o.payment,
		DeliveryFee:     o.fee,
	}
	if o.payment.RequiresDetails() {
		details := o.details
		req.PaymentInfo = &details
	}

	order, err := o.api.CreateOrder(ctx, req)
	if err != nil {
		// Authentication expiry redirects to login; everything else is
		// shown verbatim. Neither is retried here.
		return nil, err
	}
	o.placed = true

	// Empty the cart now that its contents live in the order. The clear
	// is item-by-item and not atomic; a leftover partial cart is logged
	// and resolved by the next load.
	if err := o.cart.Clear(ctx); err != nil {
		log.Printf("failed to clear cart after order %s: %v", order.ID, err)
	}
	return order, nil
}

func (o *Orchestrator) recomputeFee() {
	o.fee = domain.DeliveryFee(o.address.Region, o.method)
}

func (o *Orchestrator) background(fn func(ctx context.Context)) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until fire-and-forget side effects have finished. Used by
// tests; callers normally never need it.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
