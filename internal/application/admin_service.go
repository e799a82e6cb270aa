package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nearby-app/marketplace-api/internal/domain/audit"
	bookingDomain "github.com/nearby-app/marketplace-api/internal/domain/booking"
	"github.com/nearby-app/marketplace-api/internal/domain/catalog"
	notificationDomain "github.com/nearby-app/marketplace-api/internal/domain/notification"
	providerDomain "github.com/nearby-app/marketplace-api/internal/domain/provider"
	reviewDomain "github.com/nearby-app/marketplace-api/internal/domain/review"
	userDomain "github.com/nearby-app/marketplace-api/internal/domain/user"
	"github.com/nearby-app/marketplace-api/pkg/auth"
)

// CreateCategoryRequest holds the data for a new category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

// PlatformStatsDTO holds the admin dashboard counters.
type PlatformStatsDTO struct {
	TotalUsers     int64            `json:"total_users"`
	TotalClients   int64            `json:"total_clients"`
	TotalProviders int64            `json:"total_providers"`
	TotalBookings  int64            `json:"total_bookings"`
	ByStatus       map[string]int64 `json:"bookings_by_status"`
}

// AuditEntryDTO is the response representation of an audit entry.
type AuditEntryDTO struct {
	ID          uuid.UUID      `json:"id"`
	ActorUserID uuid.UUID      `json:"actor_user_id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    uuid.UUID      `json:"entity_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AdminService handles the admin surface: category management, provider
// verification, account blocking, review moderation and platform stats.
type AdminService struct {
	categoryRepo     catalog.CategoryRepository
	providerRepo     providerDomain.Repository
	userRepo         userDomain.Repository
	reviewRepo       reviewDomain.Repository
	bookingRepo      bookingDomain.Repository
	notificationRepo notificationDomain.Repository
	auditRepo        audit.Repository
	logger           *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	categoryRepo catalog.CategoryRepository,
	providerRepo providerDomain.Repository,
	userRepo userDomain.Repository,
	reviewRepo reviewDomain.Repository,
	bookingRepo bookingDomain.Repository,
	notificationRepo notificationDomain.Repository,
	auditRepo audit.Repository,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		categoryRepo:     categoryRepo,
		providerRepo:     providerRepo,
		userRepo:         userRepo,
		reviewRepo:       reviewRepo,
		bookingRepo:      bookingRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		logger:           logger,
	}
}

// --- Categories ---

// CreateCategory adds a new active category.
func (s *AdminService) CreateCategory(ctx context.Context, actorID uuid.UUID, req CreateCategoryRequest) (*CategoryDTO, error) {
	c, err := catalog.NewCategory(req.Name, req.Icon)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, "CATEGORY_CREATED", "category", c.ID(), map[string]any{"name": c.Name()})
	result := toCategoryDTO(c)
	return &result, nil
}

// ToggleCategory flips a category's active flag.
func (s *AdminService) ToggleCategory(ctx context.Context, actorID, categoryID uuid.UUID) (*CategoryDTO, error) {
	c, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	c.Toggle()
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, "CATEGORY_TOGGLED", "category", c.ID(), map[string]any{"is_active": c.IsActive()})
	result := toCategoryDTO(c)
	return &result, nil
}

// ListCategories retrieves all categories including inactive ones.
func (s *AdminService) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toCategoryDTOs(categories), nil
}

// --- Providers ---

// ListProviders retrieves all provider profiles, optionally filtered by
// verification state.
func (s *AdminService) ListProviders(ctx context.Context, verified *bool) ([]ProviderDTO, error) {
	providers, err := s.providerRepo.ListAll(ctx, verified)
	if err != nil {
		return nil, err
	}

	dtos := make([]ProviderDTO, len(providers))
	for i, p := range providers {
		dtos[i] = toProviderDTO(p)
	}
	return dtos, nil
}

// VerifyProvider marks a provider profile as verified and notifies its owner.
func (s *AdminService) VerifyProvider(ctx context.Context, actorID, providerID uuid.UUID) (*ProviderDTO, error) {
	profile, err := s.providerRepo.FindByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	profile.Verify()
	if err := s.providerRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.notify(ctx, profile.UserID(), notificationDomain.TypeProviderVerified,
		"Profile verified", "Your provider profile has been verified. Clients can now find you.")
	s.audit(ctx, actorID, "PROVIDER_VERIFIED", "provider", profile.ID(), nil)

	result := toProviderDTO(profile)
	return &result, nil
}

// --- Users ---

// BlockUser blocks an account. Blocked users can no longer log in; a blocked
// provider is notified.
func (s *AdminService) BlockUser(ctx context.Context, actorID, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.Block()
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	if u.Role() == auth.RoleProvider {
		s.notify(ctx, u.ID(), notificationDomain.TypeProviderBlocked,
			"Account blocked", "Your provider account has been blocked by an administrator.")
	}
	s.audit(ctx, actorID, "USER_BLOCKED", "user", u.ID(), map[string]any{"role": u.Role()})

	result := toUserDTO(u)
	return &result, nil
}

// --- Reviews ---

// ListReviews retrieves all reviews including hidden ones.
func (s *AdminService) ListReviews(ctx context.Context) ([]ReviewDTO, error) {
	reviews, err := s.reviewRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toReviewDTOs(reviews), nil
}

// HideReview hides a review from public listings without deleting it.
func (s *AdminService) HideReview(ctx context.Context, actorID, reviewID uuid.UUID) (*ReviewDTO, error) {
	rev, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	rev.Hide()
	if err := s.reviewRepo.Update(ctx, rev); err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, "REVIEW_HIDDEN", "review", rev.ID(), nil)
	result := toReviewDTO(rev)
	return &result, nil
}

// --- Stats and audit ---

// GetPlatformStats retrieves the admin dashboard counters.
func (s *AdminService) GetPlatformStats(ctx context.Context) (*PlatformStatsDTO, error) {
	totalUsers, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	totalClients, err := s.userRepo.CountByRole(ctx, auth.RoleClient)
	if err != nil {
		return nil, err
	}
	totalProviders, err := s.userRepo.CountByRole(ctx, auth.RoleProvider)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.bookingRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var totalBookings int64
	for _, c := range byStatus {
		totalBookings += c
	}

	return &PlatformStatsDTO{
		TotalUsers:     totalUsers,
		TotalClients:   totalClients,
		TotalProviders: totalProviders,
		TotalBookings:  totalBookings,
		ByStatus:       byStatus,
	}, nil
}

// ListAuditEntries retrieves the most recent audit entries.
func (s *AdminService) ListAuditEntries(ctx context.Context, limit int) ([]AuditEntryDTO, error) {
	entries, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:          e.ID(),
			ActorUserID: e.ActorUserID(),
			Action:      e.Action(),
			EntityType:  e.EntityType(),
			EntityID:    e.EntityID(),
			Metadata:    e.Metadata(),
			CreatedAt:   e.CreatedAt(),
		}
	}
	return dtos, nil
}

// --- Helpers ---

func toCategoryDTO(c *catalog.Category) CategoryDTO {
	return CategoryDTO{
		ID:       c.ID(),
		Name:     c.Name(),
		Icon:     c.Icon(),
		IsActive: c.IsActive(),
	}
}

func (s *AdminService) notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) {
	n := notificationDomain.New(userID, notifType, title, body)
	if err := s.notificationRepo.Save(ctx, n); err != nil {
		s.logger.Error("failed to save notification",
			zap.String("user_id", userID.String()),
			zap.String("type", notifType),
			zap.Error(err),
		)
	}
}

func (s *AdminService) audit(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, metadata map[string]any) {
	entry := audit.NewEntry(actorID, action, entityType, entityID, metadata)
	if err := s.auditRepo.Save(ctx, entry); err != nil {
		s.logger.Error("failed to save audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
