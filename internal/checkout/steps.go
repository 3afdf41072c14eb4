package checkout

import (
	"context"
	"log"
)

// Step identifies a checkout stage. The flow is linear:
// Address -> Delivery -> Payment -> Review, with backward transitions
// allowed everywhere except from Address.
type Step int

const (
	StepAddress Step = iota
	StepDelivery
	StepPayment
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepDelivery:
		return "delivery"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// stage is one variant of the closed step set. validate gates the
// forward transition; commit runs its side effects once the transition
// is allowed.
type stage interface {
	step() Step
	validate(o *Orchestrator) error
	commit(ctx context.Context, o *Orchestrator)
}

type addressStage struct{}

func (addressStage) step() Step { return StepAddress }

func (addressStage) validate(o *Orchestrator) error {
	return validateAddress(o.address)
}

// commit persists a freshly entered address to the profile. Fire and
// forget: a failure is logged, never blocks checkout.
func (addressStage) commit(_ context.Context, o *Orchestrator) {
	if !o.freshAddress {
		return
	}
	addr := o.address
	o.background(func(ctx context.Context) {
		if err := o.api.SaveAddress(ctx, addr); err != nil {
			log.Printf("failed to save address to profile: %v", err)
		}
	})
}

type deliveryStage struct{}

func (deliveryStage) step() Step { return StepDelivery }

func (deliveryStage) validate(o *Orchestrator) error {
	if !o.method.Valid() {
		return FieldErrors{"deliveryMethod": "a delivery method is required"}
	}
	return nil
}

func (deliveryStage) commit(context.Context, *Orchestrator) {}

type paymentStage struct{}

func (paymentStage) step() Step { return StepPayment }

func (paymentStage) validate(o *Orchestrator) error {
	if !o.payment.Valid() {
		return FieldErrors{"paymentMethod": "a payment method is required"}
	}
	// Cash on delivery needs no details; gcash and paymaya need all
	// four, checked here at the review transition and not earlier.
	if o.payment.RequiresDetails() {
		return validatePaymentDetails(o.details)
	}
	return nil
}

func (paymentStage) commit(context.Context, *Orchestrator) {}

type reviewStage struct{}

func (reviewStage) step() Step { return StepReview }

func (reviewStage) validate(*Orchestrator) error { return nil }

func (reviewStage) commit(context.Context, *Orchestrator) {}

var stages = [...]stage{
	StepAddress:  addressStage{},
	StepDelivery: deliveryStage{},
	StepPayment:  paymentStage{},
	StepReview:   reviewStage{},
}
