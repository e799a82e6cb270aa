package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/nearby-app/marketplace-api/internal/domain/booking"
	"github.com/nearby-app/marketplace-api/internal/domain/catalog"
	notificationDomain "github.com/nearby-app/marketplace-api/internal/domain/notification"
	providerDomain "github.com/nearby-app/marketplace-api/internal/domain/provider"
	userDomain "github.com/nearby-app/marketplace-api/internal/domain/user"
	"github.com/nearby-app/marketplace-api/pkg/auth"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*catalog.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]*catalog.Category)}
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.NewNotFoundError("Category", id.String())
	}
	return c, nil
}

func (r *fakeCategoryRepo) ListActive(ctx context.Context) ([]*catalog.Category, error) {
	var out []*catalog.Category
	for _, c := range r.categories {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) ListAll(ctx context.Context) ([]*catalog.Category, error) {
	var out []*catalog.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Save(ctx context.Context, c *catalog.Category) error {
	r.categories[c.ID()] = c
	return nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, c *catalog.Category) error {
	r.categories[c.ID()] = c
	return nil
}

type adminFixture struct {
	svc              *AdminService
	categoryRepo     *fakeCategoryRepo
	providerRepo     *fakeProviderRepo
	userRepo         *fakeUserRepo
	reviewRepo       *fakeReviewRepo
	bookingRepo      *fakeBookingRepo
	notificationRepo *fakeNotificationRepo
	auditRepo        *fakeAuditRepo
	actorID          uuid.UUID
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		categoryRepo:     newFakeCategoryRepo(),
		providerRepo:     newFakeProviderRepo(),
		userRepo:         newFakeUserRepo(),
		reviewRepo:       newFakeReviewRepo(),
		bookingRepo:      newFakeBookingRepo(),
		notificationRepo: &fakeNotificationRepo{},
		auditRepo:        &fakeAuditRepo{},
		actorID:          uuid.New(),
	}
	f.svc = NewAdminService(
		f.categoryRepo, f.providerRepo, f.userRepo, f.reviewRepo,
		f.bookingRepo, f.notificationRepo, f.auditRepo, zap.NewNop())
	return f
}

func TestAdminService_Categories(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()

	created, err := f.svc.CreateCategory(ctx, f.actorID, CreateCategoryRequest{Name: "Plumbing", Icon: "wrench"})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	toggled, err := f.svc.ToggleCategory(ctx, f.actorID, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	all, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.Len(t, f.auditRepo.entries, 2)
	assert.Equal(t, "CATEGORY_CREATED", f.auditRepo.entries[0].Action())
	assert.Equal(t, "CATEGORY_TOGGLED", f.auditRepo.entries[1].Action())
}

func TestAdminService_VerifyProvider(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()

	ownerID := uuid.New()
	profile, err := providerDomain.NewProfile(ownerID, "Handy Co", "", "", "Jakarta", 0, 0, "")
	require.NoError(t, err)
	require.NoError(t, f.providerRepo.Save(ctx, profile))

	verified, err := f.svc.VerifyProvider(ctx, f.actorID, profile.ID())
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	// The owning user gets the notification, not the profile.
	notifs, err := f.notificationRepo.ListByUserID(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, notificationDomain.TypeProviderVerified, notifs[0].Type())

	require.Len(t, f.auditRepo.entries, 1)
	assert.Equal(t, "PROVIDER_VERIFIED", f.auditRepo.entries[0].Action())
}

func TestAdminService_BlockUser(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked provider is notified", func(t *testing.T) {
		f := newAdminFixture()
		u, err := userDomain.NewUser("prov@test.local", "hash", "Bob", "P", "", auth.RoleProvider)
		require.NoError(t, err)
		require.NoError(t, f.userRepo.Save(ctx, u))

		blocked, err := f.svc.BlockUser(ctx, f.actorID, u.ID())
		require.NoError(t, err)
		assert.Equal(t, "BLOCKED", blocked.Status)

		notifs, err := f.notificationRepo.ListByUserID(ctx, u.ID())
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, notificationDomain.TypeProviderBlocked, notifs[0].Type())
	})

	t.Run("blocked client is not notified", func(t *testing.T) {
		f := newAdminFixture()
		u, err := userDomain.NewUser("cli@test.local", "hash", "Ana", "C", "", auth.RoleClient)
		require.NoError(t, err)
		require.NoError(t, f.userRepo.Save(ctx, u))

		blocked, err := f.svc.BlockUser(ctx, f.actorID, u.ID())
		require.NoError(t, err)
		assert.Equal(t, "BLOCKED", blocked.Status)

		notifs, err := f.notificationRepo.ListByUserID(ctx, u.ID())
		require.NoError(t, err)
		assert.Empty(t, notifs)
	})
}

func TestAdminService_HideReview(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()

	bookingRepo := newFakeBookingRepo()
	slotRepo := newFakeSlotRepo()
	bk := seedPastBooking(t, bookingRepo, slotRepo, uuid.New(), bookingDomain.StatusConfirmed)

	reviewSvc := NewReviewService(f.reviewRepo, bookingRepo, slotRepo, zap.NewNop())
	created, err := reviewSvc.CreateReview(ctx, bk.ClientID(), CreateReviewRequest{BookingID: bk.ID(), Rating: 1, Comment: "rude"})
	require.NoError(t, err)

	_, err = f.svc.HideReview(ctx, f.actorID, created.ID)
	require.NoError(t, err)

	rev, err := f.reviewRepo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, rev.IsHidden())
}

func TestAdminService_GetPlatformStats(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()

	for i, role := range []string{auth.RoleClient, auth.RoleClient, auth.RoleProvider} {
		u, err := userDomain.NewUser(
			fmt.Sprintf("user%d@test.local", i), "hash", "U", "Ser", "", role)
		require.NoError(t, err)
		require.NoError(t, f.userRepo.Save(ctx, u))
	}

	now := time.Now().UTC()
	for _, status := range []bookingDomain.BookingStatus{
		bookingDomain.StatusPending, bookingDomain.StatusPending, bookingDomain.StatusConfirmed,
	} {
		bk := bookingDomain.Reconstruct(
			uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			status, "", 1, now, now)
		require.NoError(t, f.bookingRepo.Save(ctx, bk))
	}

	stats, err := f.svc.GetPlatformStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalClients)
	assert.Equal(t, int64(1), stats.TotalProviders)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.ByStatus["PENDING"])
	assert.Equal(t, int64(1), stats.ByStatus["CONFIRMED"])
}
