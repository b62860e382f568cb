package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"lendly/internal/app/policies"
)

// Emitter turns booking lifecycle events coming off the broker into
// notifications for the affected party. It is a kafka.MessageHandler: wire it
// to a consumer group subscribed to the booking events topic.
type Emitter struct {
	Notifier policies.Notifier
	Logger   *slog.Logger
}

type cloudEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type bookingEventData struct {
	BookingID    string `json:"BookingID"`
	ItemID       string `json:"ItemID"`
	RenterID     string `json:"RenterID"`
	OwnerID      string `json:"OwnerID"`
	PaymentID    string `json:"PaymentID"`
	ReportedBy   string `json:"ReportedBy"`
	Counterparty string `json:"Counterparty"`
	Description  string `json:"Description"`
}

func (e *Emitter) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		if e.Logger != nil {
			e.Logger.Warn("notify: undecodable event", "topic", msg.Topic, "err", err)
		}
		return nil
	}
	var data bookingEventData
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		return nil
	}
	notification, ok := translate(strings.TrimSuffix(evt.Type, ".v1"), data)
	if !ok {
		return nil
	}
	if err := e.Notifier.Create(ctx, notification); err != nil {
		if e.Logger != nil {
			e.Logger.Warn("notify: delivery failed", "type", notification.Type, "recipient", notification.Recipient, "err", err)
		}
		return err
	}
	return nil
}

func translate(eventType string, data bookingEventData) (policies.Notification, bool) {
	base := policies.Notification{
		RelatedItem:    data.ItemID,
		RelatedBooking: data.BookingID,
	}
	switch eventType {
	case "booking.requested":
		base.Recipient = data.OwnerID
		base.Type = "new_booking_request"
		base.Title = "New booking request"
		base.Message = "You have a new booking request for your item."
		base.RelatedUser = data.RenterID
	case "booking.approved":
		base.Recipient = data.RenterID
		base.Type = "booking_approved"
		base.Title = "Booking approved"
		base.Message = "Your booking request was approved."
		base.RelatedUser = data.OwnerID
	case "booking.rejected":
		base.Recipient = data.RenterID
		base.Type = "booking_rejected"
		base.Title = "Booking rejected"
		base.Message = "Your booking request was rejected."
		base.RelatedUser = data.OwnerID
	case "booking.cancelled":
		base.Recipient = data.OwnerID
		base.Type = "booking_cancelled"
		base.Title = "Booking cancelled"
		base.Message = "A booking for your item was cancelled."
		base.RelatedUser = data.RenterID
	case "booking.completed":
		base.Recipient = data.RenterID
		base.Type = "booking_completed"
		base.Title = "Rental completed"
		base.Message = "Your rental has been marked as completed."
		base.RelatedUser = data.OwnerID
	case "booking.payment_received":
		base.Recipient = data.OwnerID
		base.Type = "payment_received"
		base.Title = "Payment received"
		base.Message = "Payment was received for a booking of your item."
		base.RelatedUser = data.RenterID
	case "booking.payment_refunded":
		base.Recipient = data.RenterID
		base.Type = "payment_refunded"
		base.Title = "Payment refunded"
		base.Message = "A refund was issued for your booking."
		base.RelatedUser = data.OwnerID
	case "booking.issue_reported":
		base.Recipient = data.Counterparty
		base.Type = "other"
		base.Title = "Issue reported"
		base.Message = fmt.Sprintf("An issue was reported on a booking: %s", data.Description)
		base.RelatedUser = data.ReportedBy
	default:
		return policies.Notification{}, false
	}
	return base, true
}

// LogNotifier writes notifications to the log. It stands in for the real
// notification service in local and test environments.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Create(ctx context.Context, notification policies.Notification) error {
	if n.Logger != nil {
		n.Logger.Info("notification",
			"recipient", notification.Recipient,
			"type", notification.Type,
			"title", notification.Title,
			"booking", notification.RelatedBooking,
		)
	}
	return nil
}

var _ policies.Notifier = LogNotifier{}
