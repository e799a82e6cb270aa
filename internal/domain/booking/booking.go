package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// Booking is the aggregate root for the booking domain. A booking links a
// client to a provider's service and one availability slot; the slot's booked
// flag is owned by the slot store, not this aggregate.
type Booking struct {
	id         uuid.UUID
	clientID   uuid.UUID
	providerID uuid.UUID
	serviceID  uuid.UUID
	slotID     uuid.UUID
	status     BookingStatus
	note       string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking with status PENDING.
func NewBooking(clientID, providerID, serviceID, slotID uuid.UUID, note string) (*Booking, error) {
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if providerID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if serviceID == uuid.Nil {
		return nil, domain.NewValidationError("service ID is required")
	}
	if slotID == uuid.Nil {
		return nil, domain.NewValidationError("slot ID is required")
	}

	now := time.Now().UTC()
	return &Booking{
		id:         uuid.New(),
		clientID:   clientID,
		providerID: providerID,
		serviceID:  serviceID,
		slotID:     slotID,
		status:     StatusPending,
		note:       note,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id, clientID, providerID, serviceID, slotID uuid.UUID,
	status BookingStatus,
	note string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		clientID:   clientID,
		providerID: providerID,
		serviceID:  serviceID,
		slotID:     slotID,
		status:     status,
		note:       note,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ClientID returns the booking client's user ID.
func (b *Booking) ClientID() uuid.UUID { return b.clientID }

// ProviderID returns the owning provider profile ID.
func (b *Booking) ProviderID() uuid.UUID { return b.providerID }

// ServiceID returns the booked service's ID.
func (b *Booking) ServiceID() uuid.UUID { return b.serviceID }

// SlotID returns the claimed availability slot's ID.
func (b *Booking) SlotID() uuid.UUID { return b.slotID }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Note returns the client's optional note.
func (b *Booking) Note() string { return b.note }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Confirm transitions the booking from PENDING to CONFIRMED. Only the owning
// provider may confirm.
func (b *Booking) Confirm(providerID uuid.UUID) error {
	if b.providerID != providerID {
		return domain.NewForbiddenError("booking does not belong to this provider")
	}
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reject transitions the booking from PENDING to REJECTED. Only the owning
// provider may reject. The caller is responsible for releasing the slot.
func (b *Booking) Reject(providerID uuid.UUID) error {
	if b.providerID != providerID {
		return domain.NewForbiddenError("booking does not belong to this provider")
	}
	if !b.status.CanTransitionTo(StatusRejected) {
		return domain.NewInvalidStateError(string(b.status), string(StatusRejected))
	}
	b.status = StatusRejected
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking from PENDING or CONFIRMED to CANCELLED. Only
// the owning client may cancel. The caller is responsible for the
// cancellation-window check and for releasing the slot.
func (b *Booking) Cancel(clientID uuid.UUID) error {
	if b.clientID != clientID {
		return domain.NewForbiddenError("booking does not belong to this user")
	}
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
