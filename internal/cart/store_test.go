package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/api"
	"github.com/fjod/go_storefront/internal/domain"
)

type mockSession struct {
	valid bool
	admin bool
}

func (m *mockSession) Valid() bool   { return m.valid }
func (m *mockSession) IsAdmin() bool { return m.admin }

// mockAPI returns canned carts and records calls. block, when set, holds
// every call until released so in-flight behavior can be observed.
type mockAPI struct {
	m            sync.Mutex
	cart         *domain.Cart
	err          error
	calls        int
	block        chan struct{}
	lastQuantity int

	// failAfter > 0 makes respond fail once that many calls have
	// succeeded since it was set.
	failAfter int
	served    int
}

func (m *mockAPI) respond() (*domain.Cart, error) {
	m.m.Lock()
	m.calls++
	block := m.block
	m.m.Unlock()

	if block != nil {
		<-block
	}

	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.failAfter > 0 {
		if m.served >= m.failAfter {
			return nil, fmt.Errorf("network failure")
		}
		m.served++
	}
	c := *m.cart
	c.Items = append([]domain.CartItem(nil), m.cart.Items...)
	return &c, nil
}

func (m *mockAPI) GetCart(context.Context) (*domain.Cart, error) { return m.respond() }
func (m *mockAPI) AddCartItem(context.Context, domain.AddItemRequest) (*domain.Cart, error) {
	return m.respond()
}
func (m *mockAPI) UpdateCartItem(_ context.Context, _ string, quantity int) (*domain.Cart, error) {
	m.m.Lock()
	m.lastQuantity = quantity
	m.m.Unlock()
	return m.respond()
}
func (m *mockAPI) RemoveCartItem(context.Context, string) (*domain.Cart, error) {
	return m.respond()
}

func (m *mockAPI) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

func serverCart(total float64, items ...domain.CartItem) *domain.Cart {
	return &domain.Cart{
		UserID:      "u1",
		Items:       items,
		TotalAmount: total,
		UpdatedAt:   time.Now(),
	}
}

func TestLoad_ReplacesStateWithServerCart(t *testing.T) {
	mock := &mockAPI{cart: serverCart(600,
		domain.CartItem{ID: "i1", ProductID: "p1", UnitPrice: 100, Quantity: 1},
		domain.CartItem{ID: "i2", ProductID: "p2", UnitPrice: 250, Quantity: 2},
	)}
	sut := NewStore(mock, &mockSession{valid: true})

	require.NoError(t, sut.Load(context.Background()))
	assert.Equal(t, StateLoaded, sut.State())
	assert.Equal(t, 2, sut.Len())
	// The total is whatever the server said, never a local sum.
	assert.Equal(t, 600.0, sut.TotalAmount())
}

func TestLoad_AuthFailureIsDistinct(t *testing.T) {
	mock := &mockAPI{err: fmt.Errorf("token rejected: %w", api.ErrAuthRequired)}
	sut := NewStore(mock, &mockSession{valid: true})

	err := sut.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrAuthRequired)
	assert.Equal(t, StateEmpty, sut.State())
	assert.Nil(t, sut.Cart())
}

func TestLoad_GenericFailureRevertsToEmpty(t *testing.T) {
	mock := &mockAPI{cart: serverCart(100, domain.CartItem{ID: "i1", Quantity: 1, UnitPrice: 100})}
	sut := NewStore(mock, &mockSession{valid: true})
	require.NoError(t, sut.Load(context.Background()))

	mock.m.Lock()
	mock.err = fmt.Errorf("boom")
	mock.m.Unlock()

	require.Error(t, sut.Load(context.Background()))
	assert.Equal(t, StateEmpty, sut.State())
}

func TestAddItem_RequiresAuthentication(t *testing.T) {
	mock := &mockAPI{}
	sut := NewStore(mock, &mockSession{valid: false})

	err := sut.AddItem(context.Background(), "p1", 1, 100, "", "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, mock.callCount(), "no request should be made")
}

func TestAddItem_RejectedForAdmins(t *testing.T) {
	mock := &mockAPI{}
	sut := NewStore(mock, &mockSession{valid: true, admin: true})

	err := sut.AddItem(context.Background(), "p1", 1, 100, "", "")
	assert.ErrorIs(t, err, ErrAdminAccount)
	assert.Equal(t, 0, mock.callCount())
}

func TestAddItem_FullStateReplace(t *testing.T) {
	mock := &mockAPI{cart: serverCart(350,
		domain.CartItem{ID: "i1", ProductID: "p1", UnitPrice: 100, Quantity: 1},
		domain.CartItem{ID: "i2", ProductID: "p2", UnitPrice: 250, Quantity: 1},
	)}
	sut := NewStore(mock, &mockSession{valid: true})

	require.NoError(t, sut.AddItem(context.Background(), "p2", 1, 250, "M", "blue"))
	assert.Equal(t, 350.0, sut.TotalAmount())
	assert.Equal(t, 2, sut.Len())
}

func TestAddItem_StockConflictSurfaced(t *testing.T) {
	mock := &mockAPI{err: &api.StockConflictError{ProductID: "p1", Available: 3, InCart: 2, Requested: 5}}
	sut := NewStore(mock, &mockSession{valid: true})

	err := sut.AddItem(context.Background(), "p1", 5, 100, "", "")
	var conflict *api.StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 3, conflict.Available)
	assert.Equal(t, 2, conflict.InCart)
}

func TestUpdateItem_ClampsQuantityToOne(t *testing.T) {
	for _, q := range []int{0, -1, -99} {
		mock := &mockAPI{cart: serverCart(100, domain.CartItem{ID: "i1", UnitPrice: 100, Quantity: 1})}
		sut := NewStore(mock, &mockSession{valid: true})

		require.NoError(t, sut.UpdateItem(context.Background(), "i1", q))
		assert.Equal(t, 1, mock.lastQuantity, "quantity %d must be clamped to 1", q)
	}
}

func TestUpdateItem_PassesValidQuantity(t *testing.T) {
	mock := &mockAPI{cart: serverCart(500, domain.CartItem{ID: "i1", UnitPrice: 100, Quantity: 5})}
	sut := NewStore(mock, &mockSession{valid: true})

	require.NoError(t, sut.UpdateItem(context.Background(), "i1", 5))
	assert.Equal(t, 5, mock.lastQuantity)
}

func TestMutation_RejectedWhileBusy(t *testing.T) {
	block := make(chan struct{})
	mock := &mockAPI{
		cart:  serverCart(100, domain.CartItem{ID: "i1", UnitPrice: 100, Quantity: 1}),
		block: block,
	}
	sut := NewStore(mock, &mockSession{valid: true})

	done := make(chan error, 1)
	go func() {
		done <- sut.AddItem(context.Background(), "p1", 1, 100, "", "")
	}()

	require.Eventually(t, sut.Busy, time.Second, 5*time.Millisecond)

	// A second mutation while one is in flight is refused outright.
	err := sut.UpdateItem(context.Background(), "i1", 2)
	assert.ErrorIs(t, err, ErrBusy)

	close(block)
	require.NoError(t, <-done)
	assert.False(t, sut.Busy())
}

func TestClear_RemovesEveryItemIndividually(t *testing.T) {
	mock := &mockAPI{cart: serverCart(600,
		domain.CartItem{ID: "i1", UnitPrice: 100, Quantity: 1},
		domain.CartItem{ID: "i2", UnitPrice: 250, Quantity: 2},
	)}
	sut := NewStore(mock, &mockSession{valid: true})
	require.NoError(t, sut.Load(context.Background()))
	calls := mock.callCount()

	require.NoError(t, sut.Clear(context.Background()))
	assert.Equal(t, StateEmpty, sut.State())
	assert.Equal(t, 0, sut.Len())
	// One delete per item, no bulk call.
	assert.Equal(t, calls+2, mock.callCount())
}

func TestClear_PartialFailureReported(t *testing.T) {
	mock := &mockAPI{cart: serverCart(600,
		domain.CartItem{ID: "i1", UnitPrice: 100, Quantity: 1},
		domain.CartItem{ID: "i2", UnitPrice: 250, Quantity: 2},
	)}
	sut := NewStore(mock, &mockSession{valid: true})
	require.NoError(t, sut.Load(context.Background()))

	// First remove succeeds, second blows up.
	mock.m.Lock()
	mock.failAfter = 1
	mock.m.Unlock()

	err := sut.Clear(context.Background())
	var partial *PartialClearError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Removed)
}

func TestReset_DropsLocalStateOnly(t *testing.T) {
	mock := &mockAPI{cart: serverCart(100, domain.CartItem{ID: "i1", UnitPrice: 100, Quantity: 1})}
	sut := NewStore(mock, &mockSession{valid: true})
	require.NoError(t, sut.Load(context.Background()))
	calls := mock.callCount()

	sut.Reset()
	assert.Equal(t, StateEmpty, sut.State())
	assert.Equal(t, calls, mock.callCount(), "reset must not touch the server")
}
