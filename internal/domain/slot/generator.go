package slot

import (
	"time"

	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// TileWindow tiles a day window with contiguous slots of the given duration,
// starting at windowStart. A trailing remainder shorter than one full
// duration is discarded. Fails with INVALID_TIME_RANGE when the window end
// does not follow the start, and NO_SLOTS_GENERATED when not a single full
// slot fits.
func TileWindow(
	providerID uuid.UUID,
	serviceID uuid.UUID,
	windowStart, windowEnd time.Time,
	timezone string,
	duration time.Duration,
) ([]*Slot, error) {
	if !windowStart.Before(windowEnd) {
		return nil, NewInvalidTimeRangeError()
	}
	if duration <= 0 {
		return nil, domain.NewValidationError("slot duration must be positive")
	}

	var slots []*Slot
	for cursor := windowStart; !cursor.Add(duration).After(windowEnd); cursor = cursor.Add(duration) {
		s, err := NewSlot(providerID, &serviceID, cursor, cursor.Add(duration), timezone)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}

	if len(slots) == 0 {
		return nil, NewNoSlotsGeneratedError()
	}
	return slots, nil
}

// NewNoSlotsGeneratedError is returned when a generation window cannot fit a
// single full slot.
func NewNoSlotsGeneratedError() *domain.AppError {
	return domain.NewError(domain.KindValidation, "NO_SLOTS_GENERATED", "No full slots fit in the given time window")
}
