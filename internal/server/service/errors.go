package service

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyOrder      = errors.New("order has no items")
	ErrInvalidMethod   = errors.New("unknown delivery or payment method")
	ErrBadDeliveryFee  = errors.New("delivery fee does not match the schedule")
	ErrPaymentDetails  = errors.New("payment details required for the chosen method")
)

// StockConflictError carries the structured stock payload: what is
// available and what the cart already holds, so the client can adjust
// the requested quantity instead of retrying blindly.
type StockConflictError struct {
	ProductID string
	Available int
	InCart    int
	Requested int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %d available, %d in cart, %d requested",
		e.ProductID, e.Available, e.InCart, e.Requested)
}
