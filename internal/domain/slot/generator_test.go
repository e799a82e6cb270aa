package slot

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestTileWindow(t *testing.T) {
	providerID := uuid.New()
	serviceID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("discards trailing remainder", func(t *testing.T) {
		// 09:00-12:30 with 90-minute slots: two full slots fit, the last
		// 30 minutes are dropped.
		slots, err := TileWindow(providerID, serviceID,
			day.Add(9*time.Hour), day.Add(12*time.Hour+30*time.Minute),
			"Europe/Berlin", 90*time.Minute)
		require.NoError(t, err)
		require.Len(t, slots, 2)

		assert.Equal(t, day.Add(9*time.Hour), slots[0].StartAt())
		assert.Equal(t, day.Add(10*time.Hour+30*time.Minute), slots[0].EndAt())
		assert.Equal(t, day.Add(10*time.Hour+30*time.Minute), slots[1].StartAt())
		assert.Equal(t, day.Add(12*time.Hour), slots[1].EndAt())
	})

	t.Run("exact fit", func(t *testing.T) {
		slots, err := TileWindow(providerID, serviceID,
			day.Add(9*time.Hour), day.Add(12*time.Hour),
			"Europe/Berlin", 60*time.Minute)
		require.NoError(t, err)
		assert.Len(t, slots, 3)
	})

	t.Run("slots are contiguous and open", func(t *testing.T) {
		slots, err := TileWindow(providerID, serviceID,
			day.Add(8*time.Hour), day.Add(18*time.Hour),
			"Europe/Berlin", 45*time.Minute)
		require.NoError(t, err)

		for i, s := range slots {
			assert.False(t, s.IsBooked())
			assert.Equal(t, providerID, s.ProviderID())
			require.NotNil(t, s.ServiceID())
			assert.Equal(t, serviceID, *s.ServiceID())
			if i > 0 {
				assert.Equal(t, slots[i-1].EndAt(), s.StartAt())
			}
		}
	})

	t.Run("window too short for one slot", func(t *testing.T) {
		_, err := TileWindow(providerID, serviceID,
			day.Add(9*time.Hour), day.Add(9*time.Hour+30*time.Minute),
			"Europe/Berlin", 90*time.Minute)
		assertAppErrorCode(t, err, "NO_SLOTS_GENERATED")
	})

	t.Run("inverted window", func(t *testing.T) {
		_, err := TileWindow(providerID, serviceID,
			day.Add(12*time.Hour), day.Add(9*time.Hour),
			"Europe/Berlin", 60*time.Minute)
		assertAppErrorCode(t, err, "INVALID_TIME_RANGE")
	})

	t.Run("empty window", func(t *testing.T) {
		_, err := TileWindow(providerID, serviceID,
			day.Add(9*time.Hour), day.Add(9*time.Hour),
			"Europe/Berlin", 60*time.Minute)
		assertAppErrorCode(t, err, "INVALID_TIME_RANGE")
	})

	t.Run("nonpositive duration", func(t *testing.T) {
		_, err := TileWindow(providerID, serviceID,
			day.Add(9*time.Hour), day.Add(12*time.Hour),
			"Europe/Berlin", 0)
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})
}
