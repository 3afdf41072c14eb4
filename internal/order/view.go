// Package order renders a previously created order read-only: the
// record itself plus a fixed four-stage progress indicator derived from
// its status.
package order

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
)

// Stage is a position on the progress indicator.
type Stage int

const (
	StagePlaced Stage = iota
	StageProcessing
	StageShipped
	StageDelivered
)

// API is the slice of the storefront client the view needs.
type API interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// Record is an order prepared for display. Cancelled short-circuits the
// progress display entirely; Stage is meaningless when it is set.
type Record struct {
	Order     domain.Order
	Cancelled bool
	Stage     Stage
}

type View struct {
	api API
}

func NewView(api API) *View {
	return &View{api: api}
}

// Fetch loads one order by ID and maps its status onto the progress
// indicator.
func (v *View) Fetch(ctx context.Context, orderID string) (*Record, error) {
	ord, err := v.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	rec := &Record{Order: *ord}
	rec.Stage, rec.Cancelled = Progress(ord.OrderStatus)
	return rec, nil
}

// Progress maps an order status to its progress stage. Cancelled is an
// absorbing state: it maps to no stage at all and the second return is
// true.
func Progress(status domain.OrderStatus) (Stage, bool) {
	switch status {
	case domain.OrderCancelled:
		return 0, true
	case domain.OrderProcessing:
		return StageProcessing, false
	case domain.OrderShipped:
		return StageShipped, false
	case domain.OrderDelivered:
		return StageDelivered, false
	default:
		// Unknown statuses render as freshly placed rather than failing
		// the whole view.
		return StagePlaced, false
	}
}
