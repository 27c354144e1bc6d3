package notify

import (
	"context"
	"time"
)

// Notification kinds emitted by the lifecycle services
const (
	KindBookingConfirmed     = "booking_confirmed"
	KindRentalStatusChanged  = "rental_status_changed"
	KindTourBookingConfirmed = "tour_booking_confirmed"
	KindTourBookingUpdated   = "tour_booking_updated"
	KindContractStatus       = "provider_contract_status"
)

// Notification is the payload handed to the delivery collaborator
type Notification struct {
	RecipientID        string    `json:"recipient_id"`
	Kind               string    `json:"kind"`
	Title              string    `json:"title"`
	Message            string    `json:"message"`
	CorrelatedEntityID string    `json:"correlated_entity_id"`
	CreatedAt          time.Time `json:"created_at"`
}

// Dispatcher hands a notification to a delivery channel
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}
