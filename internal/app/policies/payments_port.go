package policies

import (
	"context"

	"lendly/internal/domain/shared/money"
)

// PaymentProcessor is the boundary to an external payment provider. The
// shipped implementation is a stub that fabricates identifiers; booking
// payment state itself is owned by the lifecycle handlers.
type PaymentProcessor interface {
	Charge(ctx context.Context, bookingID string, amount money.Money, method string) (paymentID string, err error)
	Refund(ctx context.Context, bookingID, paymentID string, amount money.Money) error
}
