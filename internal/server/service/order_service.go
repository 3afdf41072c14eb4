package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/repository"
)

// OrderService creates and reads orders. Creation snapshots the
// submitted items, validates the delivery fee against the schedule,
// decrements stock and computes the authoritative total. The cart is
// left alone: emptying it after a successful order is the client's
// move, matching the rest of the cart contract.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository) *OrderService {
	return &OrderService{orders: orders, products: products}
}

func (s *OrderService) Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !req.DeliveryMethod.Valid() {
		return nil, fmt.Errorf("delivery method %q: %w", req.DeliveryMethod, ErrInvalidMethod)
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("payment method %q: %w", req.PaymentMethod, ErrInvalidMethod)
	}
	if req.PaymentMethod.RequiresDetails() && !detailsComplete(req.PaymentInfo) {
		return nil, ErrPaymentDetails
	}

	// The client computes the fee from the same schedule for display;
	// the submitted figure still has to match it.
	if fee := domain.DeliveryFee(req.ShippingAddress.Region, req.DeliveryMethod); fee != req.DeliveryFee {
		return nil, ErrBadDeliveryFee
	}

	// Decrement stock per item, rolling back on failure so a rejected
	// order leaves inventory untouched.
	decremented := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.rollbackStock(ctx, decremented)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, s.stockConflict(ctx, item)
			}
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		decremented = append(decremented, item)
	}

	var subtotal float64
	for _, item := range req.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		DeliveryMethod:  req.DeliveryMethod,
		PaymentMethod:   req.PaymentMethod,
		PaymentInfo:     req.PaymentInfo,
		DeliveryFee:     req.DeliveryFee,
		TotalAmount:     subtotal + req.DeliveryFee,
		OrderStatus:     domain.OrderPlaced,
		PaymentStatus:   paymentStatusFor(req.PaymentMethod),
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.rollbackStock(ctx, decremented)
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, userID)
}

func (s *OrderService) rollbackStock(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if err := s.products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			// Nothing sensible left to do beyond recording it.
			log.Printf("failed to roll back stock for %s: %v", item.ProductID, err)
		}
	}
}

func (s *OrderService) stockConflict(ctx context.Context, item domain.OrderItem) error {
	conflict := &StockConflictError{
		ProductID: item.ProductID,
		Requested: item.Quantity,
	}
	if product, err := s.products.GetProduct(ctx, item.ProductID); err == nil {
		conflict.Available = product.Stock
	}
	return conflict
}

func detailsComplete(d *domain.PaymentDetails) bool {
	return d != nil &&
		d.AccountName != "" &&
		d.AccountNumber != "" &&
		d.ReferenceNumber != "" &&
		d.DateCreated != ""
}

// Cash settles on delivery; wallet payments arrive with a reference
// number and count as paid.
func paymentStatusFor(method domain.PaymentMethod) domain.PaymentStatus {
	if method == domain.PaymentCashOnDelivery {
		return domain.PaymentPending
	}
	return domain.PaymentPaid
}
