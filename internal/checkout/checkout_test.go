package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/api"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
)

type mockSession struct {
	m     sync.Mutex
	valid bool
}

func (s *mockSession) Valid() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.valid
}

func (s *mockSession) IsAdmin() bool { return false }

func (s *mockSession) expire() {
	s.m.Lock()
	defer s.m.Unlock()
	s.valid = false
}

type mockCheckoutAPI struct {
	m           sync.Mutex
	order       *domain.Order
	orderErr    error
	created     []domain.CreateOrderRequest
	savedAddrs  []domain.Address
	saveAddrErr error
}

func (m *mockCheckoutAPI) CreateOrder(_ context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.created = append(m.created, req)
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	o := *m.order
	return &o, nil
}

func (m *mockCheckoutAPI) SaveAddress(_ context.Context, addr domain.Address) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.savedAddrs = append(m.savedAddrs, addr)
	return m.saveAddrErr
}

func (m *mockCheckoutAPI) createCalls() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.created)
}

// cartAPI backs the cart store with a fixed two-item cart: unit prices
// 100 and 250, quantities 1 and 2.
type cartAPI struct {
	m    sync.Mutex
	cart domain.Cart
}

func newCartAPI() *cartAPI {
	return &cartAPI{cart: domain.Cart{
		UserID: "u1",
		Items: []domain.CartItem{
			{ID: "i1", ProductID: "p1", Name: "Classic Tee", UnitPrice: 100, Quantity: 1},
			{ID: "i2", ProductID: "p2", Name: "Denim Jacket", UnitPrice: 250, Quantity: 2},
		},
		TotalAmount: 600,
	}}
}

func (c *cartAPI) snapshot() *domain.Cart {
	cc := c.cart
	cc.Items = append([]domain.CartItem(nil), c.cart.Items...)
	return &cc
}

func (c *cartAPI) GetCart(context.Context) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	return c.snapshot(), nil
}

func (c *cartAPI) AddCartItem(context.Context, domain.AddItemRequest) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	return c.snapshot(), nil
}

func (c *cartAPI) UpdateCartItem(context.Context, string, int) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	return c.snapshot(), nil
}

func (c *cartAPI) RemoveCartItem(_ context.Context, itemID string) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	for i, item := range c.cart.Items {
		if item.ID == itemID {
			c.cart.Items = append(c.cart.Items[:i], c.cart.Items[i+1:]...)
			break
		}
	}
	total := 0.0
	for _, item := range c.cart.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	c.cart.TotalAmount = total
	return c.snapshot(), nil
}

func loadedCart(t *testing.T) *cart.Store {
	t.Helper()
	store := cart.NewStore(newCartAPI(), &mockSession{valid: true})
	require.NoError(t, store.Load(context.Background()))
	return store
}

func beginLoaded(t *testing.T) *Orchestrator {
	t.Helper()
	o, err := Begin(&mockCheckoutAPI{order: &domain.Order{ID: "o1"}}, &mockSession{valid: true}, loadedCart(t))
	require.NoError(t, err)
	return o
}

func validAddress(region string) domain.Address {
	return domain.Address{
		Street:  "123 Mabini St",
		City:    "Quezon City",
		Region:  region,
		ZipCode: "1100",
		Country: "PH",
	}
}

func TestBegin_RequiresValidSession(t *testing.T) {
	_, err := Begin(&mockCheckoutAPI{}, &mockSession{valid: false}, loadedCart(t))
	assert.ErrorIs(t, err, api.ErrAuthRequired)
}

func TestBegin_RequiresNonEmptyCart(t *testing.T) {
	empty := cart.NewStore(&cartAPI{cart: domain.Cart{UserID: "u1"}}, &mockSession{valid: true})
	_, err := Begin(&mockCheckoutAPI{}, &mockSession{valid: true}, empty)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestNext_BlockedOnMissingAddressFields(t *testing.T) {
	o := beginLoaded(t)
	o.SetAddress(domain.Address{Street: "123 Mabini St", Country: "PH"}, false)

	err := o.Next(context.Background())
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "city")
	assert.Contains(t, fields, "region")
	assert.Contains(t, fields, "zipCode")
	assert.NotContains(t, fields, "street")
	assert.Equal(t, StepAddress, o.Step(), "transition must be blocked")
}

func TestNext_AdvancesWithCompleteAddress(t *testing.T) {
	o := beginLoaded(t)
	o.SetAddress(validAddress("Metro Manila"), false)

	require.NoError(t, o.Next(context.Background()))
	assert.Equal(t, StepDelivery, o.Step())
}

func TestFreshAddress_SavedFireAndForget(t *testing.T) {
	mock := &mockCheckoutAPI{order: &domain.Order{ID: "o1"}}
	o, err := Begin(mock, &mockSession{valid: true}, loadedCart(t))
	require.NoError(t, err)

	o.SetAddress(validAddress("Metro Manila"), true)
	require.NoError(t, o.Next(context.Background()))
	o.Wait()

	mock.m.Lock()
	defer mock.m.Unlock()
	require.Len(t, mock.savedAddrs, 1)
	assert.Equal(t, "Quezon City", mock.savedAddrs[0].City)
}

func TestFreshAddress_SaveFailureDoesNotBlock(t *testing.T) {
	mock := &mockCheckoutAPI{order: &domain.Order{ID: "o1"}, saveAddrErr: assert.AnError}
	o, err := Begin(mock, &mockSession{valid: true}, loadedCart(t))
	require.NoError(t, err)

	o.SetAddress(validAddress("Metro Manila"), true)
	require.NoError(t, o.Next(context.Background()))
	assert.Equal(t, StepDelivery, o.Step())
	o.Wait()
}

func TestBack_AllowedExceptFromFirstStep(t *testing.T) {
	o := beginLoaded(t)
	assert.ErrorIs(t, o.Back(), ErrAtFirstStep)

	o.SetAddress(validAddress("Metro Manila"), false)
	require.NoError(t, o.Next(context.Background()))
	require.NoError(t, o.Back())
	assert.Equal(t, StepAddress, o.Step())
}

func TestPaymentStep_WalletRequiresAllDetails(t *testing.T) {
	o := beginLoaded(t)
	o.SetAddress(validAddress("Metro Manila"), false)
	require.NoError(t, o.Next(context.Background()))
	require.NoError(t, o.Next(context.Background()))
	require.Equal(t, StepPayment, o.Step())

	o.SetPayment(domain.PaymentGCash, domain.PaymentDetails{
		AccountName:   "Juan dela Cruz",
		AccountNumber: "09171234567",
		// referenceNumber and dateCreated missing
	})
	err := o.Next(context.Background())
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "referenceNumber")
	assert.Contains(t, fields, "dateCreated")
	assert.Equal(t, StepPayment, o.Step())

	o.SetPayment(domain.PaymentGCash, domain.PaymentDetails{
		AccountName:     "Juan dela Cruz",
		AccountNumber:   "09171234567",
		ReferenceNumber: "REF-1",
		DateCreated:     "2026-08-30",
	})
	require.NoError(t, o.Next(context.Background()))
	assert.Equal(t, StepReview, o.Step())
}

func TestPaymentStep_CashOnDeliveryNeedsNoDetails(t *testing.T) {
	o := beginLoaded(t)
	o.SetAddress(validAddress("Metro Manila"), false)
	require.NoError(t, o.Next(context.Background()))
	require.NoError(t, o.Next(context.Background()))

	o.SetPayment(domain.PaymentCashOnDelivery, domain.PaymentDetails{})
	require.NoError(t, o.Next(context.Background()))
	assert.Equal(t, StepReview, o.Step())
}

func toReview(t *testing.T, mock *mockCheckoutAPI, session *mockSession) *Orchestrator {
	t.Helper()
	o, err := Begin(mock, session, loadedCart(t))
	require.NoError(t, err)

	o.SetAddress(validAddress("Calabarzon"), false)
	o.SetDeliveryMethod(domain.DeliveryPriority)
	require.NoError(t, o.Next(context.Background()))
	require.NoError(t, o.Next(context.Background()))
	o.SetPayment(domain.PaymentCashOnDelivery, domain.PaymentDetails{})
	require.NoError(t, o.Next(context.Background()))
	require.Equal(t, StepReview, o.Step())
	return o
}

func TestPlaceOrder_OnlyAtReview(t *testing.T) {
	o := beginLoaded(t)
	_, err := o.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, ErrNotAtReview)
}

func TestPlaceOrder_ExpiredTokenShortCircuits(t *testing.T) {
	mock := &mockCheckoutAPI{order: &domain.Order{ID: "o1"}}
	session := &mockSession{valid: true}
	o := toReview(t, mock, session)

	// Checkout sat open long enough for the token to lapse.
	session.expire()

	_, err := o.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthRequired)
	assert.Equal(t, 0, mock.createCalls(), "no order-creation request may be sent")
}

func TestPlaceOrder_SubmitsSnapshotWithFee(t *testing.T) {
	mock := &mockCheckoutAPI{order: &domain.Order{ID: "o1", TotalAmount: 750}}
	o := toReview(t, mock, &mockSession{valid: true})

	order, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, 750.0, order.TotalAmount)

	mock.m.Lock()
	defer mock.m.Unlock()
	require.Len(t, mock.created, 1)
	req := mock.created[0]
	assert.Equal(t, 150.0, req.DeliveryFee)
	assert.Equal(t, domain.DeliveryPriority, req.DeliveryMethod)
	require.Len(t, req.Items, 2)
	assert.Equal(t, 100.0, req.Items[0].UnitPrice)
	assert.Equal(t, 2, req.Items[1].Quantity)
	assert.Nil(t, req.PaymentInfo, "cash on delivery carries no details")
}

func TestPlaceOrder_ClearsCartOnSuccess(t *testing.T) {
	mock := &mockCheckoutAPI{order: &domain.Order{ID: "o1"}}
	o := toReview(t, mock, &mockSession{valid: true})

	_, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, o.cart.Len())
	assert.Equal(t, cart.StateEmpty, o.cart.State())
}

func TestPlaceOrder_DoubleSubmitGuarded(t *testing.T) {
	mock := &mockCheckoutAPI{order: &domain.Order{ID: "o1"}}
	o := toReview(t, mock, &mockSession{valid: true})

	_, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)

	_, err = o.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyPlaced)
	assert.Equal(t, 1, mock.createCalls(), "double-click must not create a second order")
}

func TestPlaceOrder_ServerFailureKeepsCart(t *testing.T) {
	mock := &mockCheckoutAPI{orderErr: &api.APIError{StatusCode: 500, Message: "order service down"}}
	o := toReview(t, mock, &mockSession{valid: true})

	_, err := o.PlaceOrder(context.Background())
	require.Error(t, err)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "order service down", apiErr.Message)

	// Failed submission: cart untouched, another attempt is allowed.
	assert.Equal(t, 2, o.cart.Len())
	_, err = o.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, mock.createCalls())
}

func TestPlaceOrder_WalletDetailsIncluded(t *testing.T) {
	mock := &mockCheckoutAPI{order: &domain.Order{ID: "o1"}}
	o, err := Begin(mock, &mockSession{valid: true}, loadedCart(t))
	require.NoError(t, err)

	o.SetAddress(validAddress("Metro Manila"), false)
	require.NoError(t, o.Next(context.Background()))
	require.NoError(t, o.Next(context.Background()))
	o.SetPayment(domain.PaymentPayMaya, domain.PaymentDetails{
		AccountName:     "Juan dela Cruz",
		AccountNumber:   "09171234567",
		ReferenceNumber: "REF-9",
		DateCreated:     time.Now().Format("2006-01-02"),
	})
	require.NoError(t, o.Next(context.Background()))

	_, err = o.PlaceOrder(context.Background())
	require.NoError(t, err)

	mock.m.Lock()
	defer mock.m.Unlock()
	require.Len(t, mock.created, 1)
	require.NotNil(t, mock.created[0].PaymentInfo)
	assert.Equal(t, "REF-9", mock.created[0].PaymentInfo.ReferenceNumber)
}
