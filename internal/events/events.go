package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
)

// Booking lifecycle event types carried as the CloudEvent type attribute.
const (
	BookingRequested = "booking.requested"
	BookingConfirmed = "booking.confirmed"
	BookingRejected  = "booking.rejected"
	BookingCancelled = "booking.cancelled"
)

// BookingRequestedEvent is emitted when a client claims a slot and creates a
// pending booking. ProviderUserID is the user account owning the provider
// profile; consumers push to users, not profiles. It is uuid.Nil when the
// publisher could not resolve the owner.
type BookingRequestedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	ClientID       uuid.UUID `json:"client_id"`
	ProviderID     uuid.UUID `json:"provider_id"`
	ProviderUserID uuid.UUID `json:"provider_user_id"`
	ServiceID      uuid.UUID `json:"service_id"`
	SlotID         uuid.UUID `json:"slot_id"`
	SlotStart      time.Time `json:"slot_start"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is emitted when a provider accepts a pending booking.
type BookingConfirmedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ClientID   uuid.UUID `json:"client_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingRejectedEvent is emitted when a provider rejects a pending booking.
// The slot is released as part of the same transition.
type BookingRejectedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ClientID   uuid.UUID `json:"client_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	SlotID     uuid.UUID `json:"slot_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is emitted when a client cancels a booking before the
// cancellation cutoff. The slot is released as part of the same transition.
// ProviderUserID carries the owning user account, as on BookingRequestedEvent.
type BookingCancelledEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	ClientID       uuid.UUID `json:"client_id"`
	ProviderID     uuid.UUID `json:"provider_id"`
	ProviderUserID uuid.UUID `json:"provider_user_id"`
	SlotID         uuid.UUID `json:"slot_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
