package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nearby-app/marketplace-api/internal/domain/catalog"
	providerDomain "github.com/nearby-app/marketplace-api/internal/domain/provider"
	slotDomain "github.com/nearby-app/marketplace-api/internal/domain/slot"
	"github.com/nearby-app/marketplace-api/pkg/database"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// UpsertProfileRequest holds the data for creating or updating a provider
// profile.
type UpsertProfileRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	WorkingHours string  `json:"working_hours"`
}

// CreateServiceRequest holds the data for publishing a new service.
type CreateServiceRequest struct {
	CategoryID      uuid.UUID `json:"category_id" binding:"required"`
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,gt=0"`
	PriceCents      int64     `json:"price_cents" binding:"gte=0"`
}

// UpdateServiceRequest holds partial updates to a service.
type UpdateServiceRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
	IsActive        *bool  `json:"is_active"`
}

// CreateSlotRequest holds the data for opening a single availability slot.
type CreateSlotRequest struct {
	ServiceID *uuid.UUID `json:"service_id"`
	StartAt   time.Time  `json:"start_at" binding:"required"`
	EndAt     time.Time  `json:"end_at" binding:"required"`
	Timezone  string     `json:"timezone" binding:"required"`
}

// GenerateSlotsRequest holds the data for tiling a day window with slots of
// the service's duration.
type GenerateSlotsRequest struct {
	ServiceID   uuid.UUID `json:"service_id" binding:"required"`
	WindowStart time.Time `json:"window_start" binding:"required"`
	WindowEnd   time.Time `json:"window_end" binding:"required"`
	Timezone    string    `json:"timezone" binding:"required"`
}

// RescheduleSlotRequest holds a slot's new time range.
type RescheduleSlotRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}

// ProviderDTO is the response representation of a provider profile.
type ProviderDTO struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city,omitempty"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	WorkingHours string    `json:"working_hours,omitempty"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// ServiceDTO is the response representation of a service offering.
type ServiceDTO struct {
	ID              uuid.UUID `json:"id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	CategoryID      uuid.UUID `json:"category_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	IsActive        bool      `json:"is_active"`
}

// SlotDTO is the response representation of an availability slot.
type SlotDTO struct {
	ID         uuid.UUID  `json:"id"`
	ProviderID uuid.UUID  `json:"provider_id"`
	ServiceID  *uuid.UUID `json:"service_id,omitempty"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      time.Time  `json:"end_at"`
	Timezone   string     `json:"timezone"`
	IsBooked   bool       `json:"is_booked"`
}

// ProviderService handles the provider-facing surface: profile management,
// the service catalog and availability slots.
type ProviderService struct {
	providerRepo providerDomain.Repository
	serviceRepo  catalog.ServiceRepository
	categoryRepo catalog.CategoryRepository
	slotRepo     slotDomain.Repository
	transactor   database.Transactor
	logger       *zap.Logger
}

// NewProviderService creates a new ProviderService.
func NewProviderService(
	providerRepo providerDomain.Repository,
	serviceRepo catalog.ServiceRepository,
	categoryRepo catalog.CategoryRepository,
	slotRepo slotDomain.Repository,
	transactor database.Transactor,
	logger *zap.Logger,
) *ProviderService {
	return &ProviderService{
		providerRepo: providerRepo,
		serviceRepo:  serviceRepo,
		categoryRepo: categoryRepo,
		slotRepo:     slotRepo,
		transactor:   transactor,
		logger:       logger,
	}
}

// NewNoProfileError is returned when a provider operation runs before the
// provider has a profile.
func NewNoProfileError() *domain.AppError {
	return domain.NewError(domain.KindNotFound, "NO_PROFILE", "Provider profile not found")
}

// requireProfile resolves the provider profile owned by the given user.
func (s *ProviderService) requireProfile(ctx context.Context, userID uuid.UUID) (*providerDomain.Profile, error) {
	profile, err := s.providerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, NewNoProfileError()
	}
	return profile, nil
}

// GetMyProfile retrieves the current provider's profile.
func (s *ProviderService) GetMyProfile(ctx context.Context, userID uuid.UUID) (*ProviderDTO, error) {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toProviderDTO(profile)
	return &result, nil
}

// UpsertProfile creates the provider's profile on first call and applies
// partial updates afterwards.
func (s *ProviderService) UpsertProfile(ctx context.Context, userID uuid.UUID, req UpsertProfileRequest) (*ProviderDTO, error) {
	profile, err := s.providerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile == nil {
		profile, err = providerDomain.NewProfile(
			userID, req.Name, req.Description, req.Address, req.City,
			req.Lat, req.Lng, req.WorkingHours,
		)
		if err != nil {
			return nil, err
		}
		if err := s.providerRepo.Save(ctx, profile); err != nil {
			return nil, err
		}
	} else {
		profile.Update(req.Name, req.Description, req.Address, req.City, req.Lat, req.Lng, req.WorkingHours)
		if err := s.providerRepo.Update(ctx, profile); err != nil {
			return nil, err
		}
	}

	result := toProviderDTO(profile)
	return &result, nil
}

// --- Services ---

// CreateService publishes a new service under the provider's profile.
func (s *ProviderService) CreateService(ctx context.Context, userID uuid.UUID, req CreateServiceRequest) (*ServiceDTO, error) {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive() {
		return nil, domain.NewValidationError("category is not active")
	}

	svc, err := catalog.NewService(profile.ID(), category.ID(), req.Title, req.Description, req.DurationMinutes, req.PriceCents)
	if err != nil {
		return nil, err
	}
	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, err
	}

	result := toServiceDTO(svc)
	return &result, nil
}

// UpdateService applies partial updates to a service the provider owns.
func (s *ProviderService) UpdateService(ctx context.Context, userID, serviceID uuid.UUID, req UpdateServiceRequest) (*ServiceDTO, error) {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	svc, err := s.serviceRepo.FindByIDForProvider(ctx, serviceID, profile.ID())
	if err != nil {
		return nil, err
	}

	svc.Update(req.Title, req.Description, req.DurationMinutes, req.PriceCents, req.IsActive)
	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}

	result := toServiceDTO(svc)
	return &result, nil
}

// DeleteService removes a service the provider owns.
func (s *ProviderService) DeleteService(ctx context.Context, userID, serviceID uuid.UUID) error {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.serviceRepo.FindByIDForProvider(ctx, serviceID, profile.ID()); err != nil {
		return err
	}
	return s.serviceRepo.Delete(ctx, serviceID)
}

// ListMyServices retrieves all services the provider owns.
func (s *ProviderService) ListMyServices(ctx context.Context, userID uuid.UUID) ([]ServiceDTO, error) {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	services, err := s.serviceRepo.ListByProviderID(ctx, profile.ID())
	if err != nil {
		return nil, err
	}
	return toServiceDTOs(services), nil
}

// --- Slots ---

// CreateSlot opens a single availability slot.
func (s *ProviderService) CreateSlot(ctx context.Context, userID uuid.UUID, req CreateSlotRequest) (*SlotDTO, error) {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.ServiceID != nil {
		if _, err := s.serviceRepo.FindByIDForProvider(ctx, *req.ServiceID, profile.ID()); err != nil {
			return nil, err
		}
	}

	sl, err := slotDomain.NewSlot(profile.ID(), req.ServiceID, req.StartAt, req.EndAt, req.Timezone)
	if err != nil {
		return nil, err
	}
	if err := s.slotRepo.Save(ctx, sl); err != nil {
		return nil, err
	}

	result := toSlotDTO(sl)
	return &result, nil
}

// GenerateSlots tiles the given window with contiguous slots of the
// service's duration. Existing unbooked slots for the pair inside the window
// are replaced; booked slots are left untouched.
func (s *ProviderService) GenerateSlots(ctx context.Context, userID uuid.UUID, req GenerateSlotsRequest) ([]SlotDTO, error) {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	svc, err := s.serviceRepo.FindByIDForProvider(ctx, req.ServiceID, profile.ID())
	if err != nil {
		return nil, err
	}

	slots, err := slotDomain.TileWindow(
		profile.ID(), svc.ID(),
		req.WindowStart, req.WindowEnd,
		req.Timezone, svc.Duration(),
	)
	if err != nil {
		return nil, err
	}

	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		if err := s.slotRepo.DeleteUnbookedInRange(txCtx, profile.ID(), svc.ID(), req.WindowStart, req.WindowEnd); err != nil {
			return err
		}
		return s.slotRepo.SaveAll(txCtx, slots)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("slots generated",
		zap.String("provider_id", profile.ID().String()),
		zap.String("service_id", svc.ID().String()),
		zap.Int("count", len(slots)),
	)
	return toSlotDTOs(slots), nil
}

// RescheduleSlot moves an unbooked slot to a new time range.
func (s *ProviderService) RescheduleSlot(ctx context.Context, userID, slotID uuid.UUID, req RescheduleSlotRequest) (*SlotDTO, error) {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	sl, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !sl.IsOwnedBy(profile.ID()) {
		return nil, domain.NewNotFoundError("Slot", slotID.String())
	}

	if err := sl.Reschedule(req.StartAt, req.EndAt); err != nil {
		return nil, err
	}
	if err := s.slotRepo.Update(ctx, sl); err != nil {
		return nil, err
	}

	result := toSlotDTO(sl)
	return &result, nil
}

// DeleteSlot removes an unbooked slot.
func (s *ProviderService) DeleteSlot(ctx context.Context, userID, slotID uuid.UUID) error {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return err
	}

	sl, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return err
	}
	if !sl.IsOwnedBy(profile.ID()) {
		return domain.NewNotFoundError("Slot", slotID.String())
	}
	if sl.IsBooked() {
		return slotDomain.NewSlotLockedError()
	}
	return s.slotRepo.Delete(ctx, slotID)
}

// ListMySlots retrieves all of the provider's slots ordered by start time.
func (s *ProviderService) ListMySlots(ctx context.Context, userID uuid.UUID) ([]SlotDTO, error) {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListByProviderID(ctx, profile.ID())
	if err != nil {
		return nil, err
	}
	return toSlotDTOs(slots), nil
}

// --- Helpers ---

func toProviderDTO(p *providerDomain.Profile) ProviderDTO {
	return ProviderDTO{
		ID:           p.ID(),
		UserID:       p.UserID(),
		Name:         p.Name(),
		Description:  p.Description(),
		Address:      p.Address(),
		City:         p.City(),
		Lat:          p.Lat(),
		Lng:          p.Lng(),
		WorkingHours: p.WorkingHours(),
		Verified:     p.Verified(),
		CreatedAt:    p.CreatedAt(),
	}
}

func toServiceDTO(svc *catalog.Service) ServiceDTO {
	return ServiceDTO{
		ID:              svc.ID(),
		ProviderID:      svc.ProviderID(),
		CategoryID:      svc.CategoryID(),
		Title:           svc.Title(),
		Description:     svc.Description(),
		DurationMinutes: svc.DurationMinutes(),
		PriceCents:      svc.PriceCents(),
		IsActive:        svc.IsActive(),
	}
}

func toServiceDTOs(services []*catalog.Service) []ServiceDTO {
	dtos := make([]ServiceDTO, len(services))
	for i, svc := range services {
		dtos[i] = toServiceDTO(svc)
	}
	return dtos
}

func toSlotDTO(sl *slotDomain.Slot) SlotDTO {
	return SlotDTO{
		ID:         sl.ID(),
		ProviderID: sl.ProviderID(),
		ServiceID:  sl.ServiceID(),
		StartAt:    sl.StartAt(),
		EndAt:      sl.EndAt(),
		Timezone:   sl.Timezone(),
		IsBooked:   sl.IsBooked(),
	}
}

func toSlotDTOs(slots []*slotDomain.Slot) []SlotDTO {
	dtos := make([]SlotDTO, len(slots))
	for i, sl := range slots {
		dtos[i] = toSlotDTO(sl)
	}
	return dtos
}
