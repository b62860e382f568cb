package payments

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"lendly/internal/app/policies"
	"lendly/internal/domain/shared/money"
)

// StubProcessor fabricates provider identifiers instead of talking to a real
// gateway. Charges always succeed, which keeps local and test environments
// deterministic.
type StubProcessor struct {
	Logger *slog.Logger
	Now    func() time.Time
	Rand   *rand.Rand
}

func (p *StubProcessor) Charge(ctx context.Context, bookingID string, amount money.Money, method string) (string, error) {
	paymentID := p.newPaymentID()
	if p.Logger != nil {
		p.Logger.Info("stub charge", "booking_id", bookingID, "amount", amount.Amount, "currency", amount.Currency, "method", method, "payment_id", paymentID)
	}
	return paymentID, nil
}

func (p *StubProcessor) Refund(ctx context.Context, bookingID, paymentID string, amount money.Money) error {
	if p.Logger != nil {
		p.Logger.Info("stub refund", "booking_id", bookingID, "payment_id", paymentID, "amount", amount.Amount, "currency", amount.Currency)
	}
	return nil
}

func (p *StubProcessor) newPaymentID() string {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	suffix := rand.Int63n(1_000_000)
	if p.Rand != nil {
		suffix = p.Rand.Int63n(1_000_000)
	}
	return fmt.Sprintf("pay_%d%06d", now().UnixMilli(), suffix)
}

var _ policies.PaymentProcessor = (*StubProcessor)(nil)

