package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCancellationPolicy_Boundary(t *testing.T) {
	policy := NewCancellationPolicy(60)
	slotStart := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		now         time.Time
		cancellable bool
	}{
		{"61 minutes before start", slotStart.Add(-61 * time.Minute), true},
		{"exactly at the cutoff", slotStart.Add(-60 * time.Minute), false},
		{"59 minutes before start", slotStart.Add(-59 * time.Minute), false},
		{"at slot start", slotStart, false},
		{"after slot start", slotStart.Add(10 * time.Minute), false},
		{"a day before", slotStart.Add(-24 * time.Hour), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.cancellable, policy.IsCancellable(slotStart, tc.now))
		})
	}
}

func TestCancellationPolicy_ZeroWindow(t *testing.T) {
	policy := NewCancellationPolicy(0)
	slotStart := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	assert.True(t, policy.IsCancellable(slotStart, slotStart.Add(-time.Second)))
	assert.False(t, policy.IsCancellable(slotStart, slotStart))
}

func TestCancellationPolicy_WindowMinutes(t *testing.T) {
	assert.Equal(t, 90, NewCancellationPolicy(90).WindowMinutes())
}
