package policies

import "context"

// Notification mirrors the collaborator notification service's create call.
type Notification struct {
	Recipient      string `json:"recipient"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	RelatedItem    string `json:"related_item,omitempty"`
	RelatedBooking string `json:"related_booking,omitempty"`
	RelatedUser    string `json:"related_user,omitempty"`
}

// Notifier delivers notifications fire-and-forget; failures are retried by
// the outbox worker and never surface to the originating transition.
type Notifier interface {
	Create(ctx context.Context, n Notification) error
}
