package api

import (
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

// ErrAuthRequired marks the authentication-expired/missing branch of the
// error taxonomy. Callers redirect to login instead of retrying inline.
var ErrAuthRequired = errors.New("authentication required")

// APIError is a generic server-reported failure. Message carries the
// server's text verbatim for display.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// StockConflictError reports that a requested quantity exceeds available
// inventory, with enough detail for the caller to adjust the request
// instead of retrying blindly.
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

func errorFromResponse(statusCode int, body *domain.ErrorResponse) error {
	switch {
	// A bare 403 from a backend that sends no structured code still
	// means the session is gone. A coded 403 (admin_no_cart and the
	// like) is a distinct failure and falls through.
	case body.Code == domain.CodeAuthRequired || statusCode == 401,
		statusCode == 403 && body.Code == "":
		if body.Error != "" {
			return fmt.Errorf("%s: %w", body.Error, ErrAuthRequired)
		}
		return ErrAuthRequired
	case body.Code == domain.CodeStockConflict && body.Stock != nil:
		return &StockConflictError{
			ProductID: body.Stock.ProductID,
			Available: body.Stock.Available,
			InCart:    body.Stock.InCart,
			Requested: body.Stock.Requested,
		}
	default:
		return &APIError{
			StatusCode: statusCode,
			Code:       body.Code,
			Message:    body.Error,
		}
	}
}
