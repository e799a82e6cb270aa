package booking

import (
	"fmt"
	"time"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// CancellationPolicy decides whether a booking may still be cancelled
// relative to its slot's start time. The window is configured once at
// startup, not per booking.
type CancellationPolicy struct {
	window time.Duration
}

// NewCancellationPolicy creates a policy with the given window in minutes.
func NewCancellationPolicy(windowMinutes int) CancellationPolicy {
	return CancellationPolicy{window: time.Duration(windowMinutes) * time.Minute}
}

// IsCancellable reports whether now is still before the cancellation cutoff.
// The boundary is exclusive: at exactly slotStart minus the window the
// booking is no longer cancellable.
func (p CancellationPolicy) IsCancellable(slotStart, now time.Time) bool {
	return now.Before(slotStart.Add(-p.window))
}

// WindowMinutes returns the configured window in minutes.
func (p CancellationPolicy) WindowMinutes() int {
	return int(p.window / time.Minute)
}

// NewCancellationWindowPassedError is returned when a cancellation arrives
// inside the window.
func NewCancellationWindowPassedError(windowMinutes int) *domain.AppError {
	return domain.NewError(
		domain.KindValidation,
		"CANCELLATION_WINDOW_PASSED",
		fmt.Sprintf("Cancellations must be made at least %d minutes before the slot", windowMinutes),
	)
}
