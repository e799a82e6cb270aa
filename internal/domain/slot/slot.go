package slot

import (
	"time"

	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// Slot is the aggregate root for a provider's availability slot. The booked
// flag is the single contended resource in the system; it only flips through
// the repository's atomic Claim and Release operations.
type Slot struct {
	id         uuid.UUID
	providerID uuid.UUID
	serviceID  *uuid.UUID
	startAt    time.Time
	endAt      time.Time
	timezone   string
	isBooked   bool
}

// NewSlot creates a new open slot, validating the time range.
func NewSlot(providerID uuid.UUID, serviceID *uuid.UUID, startAt, endAt time.Time, timezone string) (*Slot, error) {
	if providerID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if !startAt.Before(endAt) {
		return nil, NewInvalidTimeRangeError()
	}
	if timezone == "" {
		return nil, domain.NewValidationError("timezone is required")
	}

	return &Slot{
		id:         uuid.New(),
		providerID: providerID,
		serviceID:  serviceID,
		startAt:    startAt.UTC(),
		endAt:      endAt.UTC(),
		timezone:   timezone,
	}, nil
}

// Reconstruct rebuilds a Slot from persistence data (no validation).
func Reconstruct(
	id, providerID uuid.UUID,
	serviceID *uuid.UUID,
	startAt, endAt time.Time,
	timezone string,
	isBooked bool,
) *Slot {
	return &Slot{
		id:         id,
		providerID: providerID,
		serviceID:  serviceID,
		startAt:    startAt,
		endAt:      endAt,
		timezone:   timezone,
		isBooked:   isBooked,
	}
}

// Getters.
func (s *Slot) ID() uuid.UUID         { return s.id }
func (s *Slot) ProviderID() uuid.UUID { return s.providerID }
func (s *Slot) ServiceID() *uuid.UUID { return s.serviceID }
func (s *Slot) StartAt() time.Time    { return s.startAt }
func (s *Slot) EndAt() time.Time      { return s.endAt }
func (s *Slot) Timezone() string      { return s.timezone }
func (s *Slot) IsBooked() bool        { return s.isBooked }

// IsOwnedBy checks if the slot belongs to the given provider profile.
func (s *Slot) IsOwnedBy(providerID uuid.UUID) bool {
	return s.providerID == providerID
}

// Reschedule moves the slot to a new time range. Booked slots are locked.
func (s *Slot) Reschedule(startAt, endAt time.Time) error {
	if s.isBooked {
		return NewSlotLockedError()
	}
	if !startAt.Before(endAt) {
		return NewInvalidTimeRangeError()
	}
	s.startAt = startAt.UTC()
	s.endAt = endAt.UTC()
	return nil
}

// --- Error constructors ---

// NewSlotTakenError is returned when a claim loses the race for a slot or the
// slot is already booked.
func NewSlotTakenError() *domain.AppError {
	return domain.NewError(domain.KindConflict, "SLOT_TAKEN", "This slot is already booked")
}

// NewSlotLockedError is returned when an update or delete targets a booked slot.
func NewSlotLockedError() *domain.AppError {
	return domain.NewError(domain.KindConflict, "SLOT_LOCKED", "Slot is booked and cannot be modified")
}

// NewInvalidTimeRangeError is returned when a slot window's end does not
// follow its start.
func NewInvalidTimeRangeError() *domain.AppError {
	return domain.NewError(domain.KindValidation, "INVALID_TIME_RANGE", "Slot end time must be after start time")
}

// NewProviderMismatchError is returned when a slot does not belong to the
// provider owning the requested service.
func NewProviderMismatchError() *domain.AppError {
	return domain.NewError(domain.KindValidation, "INVALID_SLOT", "Slot does not belong to this service's provider")
}
