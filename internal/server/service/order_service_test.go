package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/repository"
)

func orderRequest() domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		Items: []domain.OrderItem{
			{ProductID: "p1", Name: "Classic Tee", UnitPrice: 100, Quantity: 1},
			{ProductID: "p2", Name: "Denim Jacket", UnitPrice: 250, Quantity: 2},
		},
		ShippingAddress: domain.Address{
			Street: "1 Rizal St", City: "Antipolo", Region: "Calabarzon",
			ZipCode: "1870", Country: "PH",
		},
		DeliveryMethod: domain.DeliveryPriority,
		PaymentMethod:  domain.PaymentCashOnDelivery,
		DeliveryFee:    150,
	}
}

func stock(t *testing.T, repo *repository.MemoryRepository, productID string) int {
	t.Helper()
	product, err := repo.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return product.Stock
}

func TestCreateOrder_ComputesTotalFromItemsAndFee(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	order, err := sut.Create(context.Background(), "u1", orderRequest())
	require.NoError(t, err)
	assert.Equal(t, 750.0, order.TotalAmount)
	assert.Equal(t, 150.0, order.DeliveryFee)
	assert.Equal(t, domain.OrderPlaced, order.OrderStatus)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.NotEmpty(t, order.ID)
}

func TestCreateOrder_DecrementsStock(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	_, err := sut.Create(context.Background(), "u1", orderRequest())
	require.NoError(t, err)
	assert.Equal(t, 9, stock(t, repo, "p1"))
	assert.Equal(t, 1, stock(t, repo, "p2"))
}

func TestCreateOrder_InsufficientStockRollsBack(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	req := orderRequest()
	req.Items[1].Quantity = 4 // p2 only has 3

	_, err := sut.Create(context.Background(), "u1", req)
	var conflict *StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "p2", conflict.ProductID)
	assert.Equal(t, 3, conflict.Available)
	assert.Equal(t, 4, conflict.Requested)

	// p1 was decremented before p2 failed and must be restored.
	assert.Equal(t, 10, stock(t, repo, "p1"))
	assert.Equal(t, 3, stock(t, repo, "p2"))
}

func TestCreateOrder_RejectsEmptyOrder(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	req := orderRequest()
	req.Items = nil
	_, err := sut.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateOrder_RejectsUnknownMethods(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	req := orderRequest()
	req.DeliveryMethod = "drone"
	_, err := sut.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrInvalidMethod)

	req = orderRequest()
	req.PaymentMethod = "barter"
	_, err = sut.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestCreateOrder_RejectsWrongDeliveryFee(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	req := orderRequest()
	req.DeliveryFee = 100 // Calabarzon priority is 150
	_, err := sut.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrBadDeliveryFee)
	assert.Equal(t, 10, stock(t, repo, "p1"))
}

func TestCreateOrder_WalletNeedsCompleteDetails(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	req := orderRequest()
	req.PaymentMethod = domain.PaymentGCash
	_, err := sut.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrPaymentDetails)

	req.PaymentInfo = &domain.PaymentDetails{
		AccountName:     "Juan dela Cruz",
		AccountNumber:   "09170000000",
		ReferenceNumber: "REF-1001",
		DateCreated:     "2026-08-30",
	}
	order, err := sut.Create(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
}

func TestGetOrder_EnforcesOwner(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	order, err := sut.Create(context.Background(), "u1", orderRequest())
	require.NoError(t, err)

	got, err := sut.Get(context.Background(), "u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = sut.Get(context.Background(), "u2", order.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListOrders_OnlyOwn(t *testing.T) {
	repo := seededRepo(t)
	sut := NewOrderService(repo, repo)

	_, err := sut.Create(context.Background(), "u1", orderRequest())
	require.NoError(t, err)

	req := orderRequest()
	req.Items = req.Items[:1]
	req.Items[0].Quantity = 1
	_, err = sut.Create(context.Background(), "u2", req)
	require.NoError(t, err)

	orders, err := sut.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "u1", orders[0].UserID)
}
