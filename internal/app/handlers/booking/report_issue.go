package booking

import (
	"context"
	"time"

	"lendly/internal/app/commands"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/outbox"
	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
)

const reportIssueKey = "booking.report_issue"

type ReportIssueCommand struct {
	BookingID   string
	Actor       domainbooking.Actor
	Description string
}

func (c ReportIssueCommand) Key() string { return reportIssueKey }

type ReportIssueResult struct {
	BookingID     string `json:"booking_id"`
	IssueReported bool   `json:"issue_reported"`
}

type ReportIssueHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ReportIssueHandler) Handle(ctx context.Context, cmd ReportIssueCommand) (*ReportIssueResult, error) {
	var result *ReportIssueResult
	err := handlersupport.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		if err := b.ReportIssue(cmd.Actor, cmd.Description, h.now()); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.Drain(ctx, h.Outbox, h.encoder(), b); err != nil {
			return err
		}
		result = &ReportIssueResult{BookingID: string(b.ID), IssueReported: b.IssueReported}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *ReportIssueHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *ReportIssueHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ReportIssueCommand, *ReportIssueResult] = (*ReportIssueHandler)(nil)
