package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nearby-app/marketplace-api/internal/domain/catalog"
	providerDomain "github.com/nearby-app/marketplace-api/internal/domain/provider"
	slotDomain "github.com/nearby-app/marketplace-api/internal/domain/slot"
)

// racingSlotRepo claims the slot right after handing it to the caller,
// standing in for a client whose booking lands between the service's
// read and its write.
type racingSlotRepo struct {
	*fakeSlotRepo
}

func (r *racingSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*slotDomain.Slot, error) {
	s, err := r.fakeSlotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.fakeSlotRepo.Claim(ctx, id); err != nil {
		return nil, err
	}
	return s, nil
}

type providerFixture struct {
	svc      *ProviderService
	slotRepo *fakeSlotRepo

	userID  uuid.UUID
	profile *providerDomain.Profile
	slot    *slotDomain.Slot
}

func newProviderFixture(t *testing.T, slotRepo slotDomain.Repository, backing *fakeSlotRepo) *providerFixture {
	t.Helper()

	f := &providerFixture{
		slotRepo: backing,
		userID:   uuid.New(),
	}

	providerRepo := newFakeProviderRepo()
	serviceRepo := newFakeServiceRepo()
	categoryRepo := newFakeCategoryRepo()

	profile, err := providerDomain.NewProfile(f.userID,
		"Sparkle Cleaning", "Home cleaning", "Jl. Sudirman 1", "Jakarta",
		-6.2088, 106.8456, "Mon-Fri 09:00-17:00")
	require.NoError(t, err)
	f.profile = profile
	require.NoError(t, providerRepo.Save(context.Background(), profile))

	svc, err := catalog.NewService(profile.ID(), uuid.New(),
		"Deep clean", "Full apartment deep clean", 120, 50000)
	require.NoError(t, err)
	require.NoError(t, serviceRepo.Save(context.Background(), svc))

	serviceID := svc.ID()
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	sl, err := slotDomain.NewSlot(profile.ID(), &serviceID,
		start, start.Add(2*time.Hour), "Asia/Jakarta")
	require.NoError(t, err)
	f.slot = sl
	require.NoError(t, backing.Save(context.Background(), sl))

	f.svc = NewProviderService(
		providerRepo,
		serviceRepo,
		categoryRepo,
		slotRepo,
		passthroughTransactor{},
		zap.NewNop(),
	)
	return f
}

func TestProviderService_DeleteSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("removes an open slot", func(t *testing.T) {
		backing := newFakeSlotRepo()
		f := newProviderFixture(t, backing, backing)

		require.NoError(t, f.svc.DeleteSlot(ctx, f.userID, f.slot.ID()))
		_, err := backing.FindByID(ctx, f.slot.ID())
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("refuses a booked slot", func(t *testing.T) {
		backing := newFakeSlotRepo()
		f := newProviderFixture(t, backing, backing)
		backing.setBooked(f.slot.ID(), true)

		err := f.svc.DeleteSlot(ctx, f.userID, f.slot.ID())
		assertAppErrorCode(t, err, "SLOT_LOCKED")
	})

	t.Run("loses to a claim landing after the read", func(t *testing.T) {
		backing := newFakeSlotRepo()
		f := newProviderFixture(t, &racingSlotRepo{fakeSlotRepo: backing}, backing)

		err := f.svc.DeleteSlot(ctx, f.userID, f.slot.ID())
		assertAppErrorCode(t, err, "SLOT_LOCKED")

		stored, findErr := backing.FindByID(ctx, f.slot.ID())
		require.NoError(t, findErr)
		assert.True(t, stored.IsBooked())
	})

	t.Run("hides another provider's slot", func(t *testing.T) {
		backing := newFakeSlotRepo()
		f := newProviderFixture(t, backing, backing)
		other := newProviderFixture(t, backing, backing)

		err := f.svc.DeleteSlot(ctx, f.userID, other.slot.ID())
		assertAppErrorCode(t, err, "NOT_FOUND")
	})
}

func TestProviderService_RescheduleSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("moves an open slot", func(t *testing.T) {
		backing := newFakeSlotRepo()
		f := newProviderFixture(t, backing, backing)

		newStart := f.slot.StartAt().Add(24 * time.Hour)
		dto, err := f.svc.RescheduleSlot(ctx, f.userID, f.slot.ID(), RescheduleSlotRequest{
			StartAt: newStart,
			EndAt:   newStart.Add(2 * time.Hour),
		})
		require.NoError(t, err)
		assert.True(t, dto.StartAt.Equal(newStart))

		stored, findErr := backing.FindByID(ctx, f.slot.ID())
		require.NoError(t, findErr)
		assert.True(t, stored.StartAt().Equal(newStart))
	})

	t.Run("loses to a claim landing after the read", func(t *testing.T) {
		backing := newFakeSlotRepo()
		f := newProviderFixture(t, &racingSlotRepo{fakeSlotRepo: backing}, backing)
		origStart := f.slot.StartAt()

		newStart := origStart.Add(24 * time.Hour)
		_, err := f.svc.RescheduleSlot(ctx, f.userID, f.slot.ID(), RescheduleSlotRequest{
			StartAt: newStart,
			EndAt:   newStart.Add(2 * time.Hour),
		})
		assertAppErrorCode(t, err, "SLOT_LOCKED")

		stored, findErr := backing.FindByID(ctx, f.slot.ID())
		require.NoError(t, findErr)
		assert.True(t, stored.IsBooked())
		assert.True(t, stored.StartAt().Equal(origStart))
	})
}
