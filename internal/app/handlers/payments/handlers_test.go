package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "lendly/internal/domain/booking"
	"lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/money"
	"lendly/internal/infra/storage/memory"
)

var payClock = time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

// fakeProcessor records calls instead of reaching a provider.
type fakeProcessor struct {
	chargeErr  error
	charges    int
	refunds    []money.Money
	refundedID string
}

func (p *fakeProcessor) Charge(ctx context.Context, bookingID string, amount money.Money, method string) (string, error) {
	if p.chargeErr != nil {
		return "", p.chargeErr
	}
	p.charges++
	return "pay-test", nil
}

func (p *fakeProcessor) Refund(ctx context.Context, bookingID, paymentID string, amount money.Money) error {
	p.refunds = append(p.refunds, amount)
	p.refundedID = paymentID
	return nil
}

type payFixture struct {
	bookings  *memory.BookingRepository
	factory   memory.Factory
	outbox    *memory.OutboxStore
	processor *fakeProcessor
}

func newPayFixture(t *testing.T) *payFixture {
	t.Helper()
	f := &payFixture{
		bookings:  memory.NewBookingRepository(),
		outbox:    memory.NewOutboxStore(),
		processor: &fakeProcessor{},
	}
	f.factory = memory.Factory{
		ItemRepo:    memory.NewItemRepository(),
		BookingRepo: f.bookings,
		UserRepo:    memory.NewUserRepository(),
	}
	return f
}

func (f *payFixture) seedBooking(t *testing.T, status domainbooking.Status) *domainbooking.Booking {
	t.Helper()
	rng, err := daterange.New(
		time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         "bk-1",
		ItemID:     "item-1",
		RenterID:   "renter-1",
		OwnerID:    "owner-1",
		Range:      rng,
		TotalDays:  3,
		TotalPrice: money.Must(60, "USD"),
		CreatedAt:  payClock,
	})
	require.NoError(t, err)
	b.Status = status
	b.ClearEvents()
	require.NoError(t, f.bookings.Save(context.Background(), b))
	return b
}

func (f *payFixture) processHandler() *ProcessPaymentHandler {
	return &ProcessPaymentHandler{
		UoWFactory: f.factory,
		Processor:  f.processor,
		Outbox:     f.outbox,
		Now:        func() time.Time { return payClock },
	}
}

func (f *payFixture) refundHandler() *RefundPaymentHandler {
	return &RefundPaymentHandler{
		UoWFactory: f.factory,
		Processor:  f.processor,
		Outbox:     f.outbox,
		Now:        func() time.Time { return payClock },
	}
}

func TestProcessPayment(t *testing.T) {
	renter := domainbooking.Actor{ID: "renter-1"}

	t.Run("charges an approved booking", func(t *testing.T) {
		f := newPayFixture(t)
		f.seedBooking(t, domainbooking.StatusApproved)

		res, err := f.processHandler().Handle(context.Background(), ProcessPaymentCommand{
			BookingID: "bk-1",
			Actor:     renter,
			Method:    "card",
		})
		require.NoError(t, err)
		assert.Equal(t, "pay-test", res.PaymentID)
		assert.Equal(t, string(domainbooking.PaymentPaid), res.PaymentStatus)
		assert.Equal(t, string(domainbooking.StatusInProgress), res.Status)
		assert.Equal(t, 1, f.processor.charges)

		b, err := f.bookings.ByID(context.Background(), "bk-1")
		require.NoError(t, err)
		assert.Equal(t, "pay-test", b.PaymentID)
		assert.Positive(t, f.outbox.Pending())
	})

	t.Run("only the renter may pay", func(t *testing.T) {
		f := newPayFixture(t)
		f.seedBooking(t, domainbooking.StatusApproved)

		_, err := f.processHandler().Handle(context.Background(), ProcessPaymentCommand{
			BookingID: "bk-1",
			Actor:     domainbooking.Actor{ID: "owner-1"},
		})
		assert.ErrorIs(t, err, domainbooking.ErrNotAllowed)
		assert.Zero(t, f.processor.charges)
	})

	t.Run("pending booking cannot be charged", func(t *testing.T) {
		f := newPayFixture(t)
		f.seedBooking(t, domainbooking.StatusPending)

		_, err := f.processHandler().Handle(context.Background(), ProcessPaymentCommand{
			BookingID: "bk-1",
			Actor:     renter,
		})
		assert.ErrorIs(t, err, domainbooking.ErrNotApproved)
		assert.Zero(t, f.processor.charges)
	})

	t.Run("paid booking is not charged twice", func(t *testing.T) {
		f := newPayFixture(t)
		b := f.seedBooking(t, domainbooking.StatusApproved)
		b.PaymentStatus = domainbooking.PaymentPaid
		require.NoError(t, f.bookings.Save(context.Background(), b))

		_, err := f.processHandler().Handle(context.Background(), ProcessPaymentCommand{
			BookingID: "bk-1",
			Actor:     renter,
		})
		assert.ErrorIs(t, err, domainbooking.ErrAlreadyPaid)
		assert.Zero(t, f.processor.charges)
	})

	t.Run("provider failure leaves the booking unpaid", func(t *testing.T) {
		f := newPayFixture(t)
		f.seedBooking(t, domainbooking.StatusApproved)
		f.processor.chargeErr = errors.New("provider down")

		_, err := f.processHandler().Handle(context.Background(), ProcessPaymentCommand{
			BookingID: "bk-1",
			Actor:     renter,
		})
		require.Error(t, err)

		b, err := f.bookings.ByID(context.Background(), "bk-1")
		require.NoError(t, err)
		assert.Equal(t, domainbooking.PaymentPending, b.PaymentStatus)
		assert.Equal(t, domainbooking.StatusApproved, b.Status)
	})
}

func TestRefundPayment(t *testing.T) {
	owner := domainbooking.Actor{ID: "owner-1"}
	renter := domainbooking.Actor{ID: "renter-1"}

	paid := func(t *testing.T, f *payFixture) {
		t.Helper()
		b := f.seedBooking(t, domainbooking.StatusApproved)
		require.NoError(t, b.MarkPaid("pay-orig", payClock))
		b.ClearEvents()
		require.NoError(t, f.bookings.Save(context.Background(), b))
	}

	t.Run("zero amount refunds the full total", func(t *testing.T) {
		f := newPayFixture(t)
		paid(t, f)

		res, err := f.refundHandler().Handle(context.Background(), RefundPaymentCommand{
			BookingID: "bk-1",
			Actor:     owner,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(60), res.Refunded.Amount)
		assert.Equal(t, string(domainbooking.PaymentRefunded), res.PaymentStatus)
		require.Len(t, f.processor.refunds, 1)
		assert.Equal(t, "pay-orig", f.processor.refundedID)
	})

	t.Run("partial refund", func(t *testing.T) {
		f := newPayFixture(t)
		paid(t, f)

		res, err := f.refundHandler().Handle(context.Background(), RefundPaymentCommand{
			BookingID: "bk-1",
			Actor:     owner,
			Amount:    money.Must(20, "USD"),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(20), res.Refunded.Amount)
		assert.Equal(t, string(domainbooking.PaymentPartiallyRefunded), res.PaymentStatus)
	})

	t.Run("renter may not refund", func(t *testing.T) {
		f := newPayFixture(t)
		paid(t, f)

		_, err := f.refundHandler().Handle(context.Background(), RefundPaymentCommand{
			BookingID: "bk-1",
			Actor:     renter,
		})
		assert.ErrorIs(t, err, domainbooking.ErrNotAllowed)
		assert.Empty(t, f.processor.refunds)
	})

	t.Run("unpaid booking", func(t *testing.T) {
		f := newPayFixture(t)
		f.seedBooking(t, domainbooking.StatusApproved)

		_, err := f.refundHandler().Handle(context.Background(), RefundPaymentCommand{
			BookingID: "bk-1",
			Actor:     owner,
		})
		assert.ErrorIs(t, err, domainbooking.ErrNotPaid)
	})

	t.Run("refund above the total", func(t *testing.T) {
		f := newPayFixture(t)
		paid(t, f)

		_, err := f.refundHandler().Handle(context.Background(), RefundPaymentCommand{
			BookingID: "bk-1",
			Actor:     owner,
			Amount:    money.Must(500, "USD"),
		})
		assert.ErrorIs(t, err, domainbooking.ErrRefundExceedsTotal)
		assert.Empty(t, f.processor.refunds)
	})
}
