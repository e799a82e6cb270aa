package application

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nearby-app/marketplace-api/internal/domain/catalog"
	providerDomain "github.com/nearby-app/marketplace-api/internal/domain/provider"
	reviewDomain "github.com/nearby-app/marketplace-api/internal/domain/review"
	slotDomain "github.com/nearby-app/marketplace-api/internal/domain/slot"
)

// SearchProvidersRequest holds the discovery filters. All filters are
// optional and combine with AND semantics.
type SearchProvidersRequest struct {
	CategoryID *uuid.UUID `form:"category_id"`
	City       string     `form:"city"`
	Lat        *float64   `form:"lat"`
	Lng        *float64   `form:"lng"`
	RadiusKm   float64    `form:"radius_km"`
}

// CategoryDTO is the response representation of a category.
type CategoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon,omitempty"`
	IsActive bool      `json:"is_active"`
}

// ProviderSearchResultDTO is a provider in search results, with the distance
// from the search origin when coordinates were given.
type ProviderSearchResultDTO struct {
	ProviderDTO
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// ReviewDTO is the response representation of a review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProviderDetailDTO is the public provider page: profile, active services,
// visible reviews and the next open slots.
type ProviderDetailDTO struct {
	Provider      ProviderDTO  `json:"provider"`
	Services      []ServiceDTO `json:"services"`
	Reviews       []ReviewDTO  `json:"reviews"`
	AverageRating float64      `json:"average_rating"`
	NextSlots     []SlotDTO    `json:"next_slots"`
}

// nextSlotsLimit caps the slot preview on the provider detail page.
const nextSlotsLimit = 5

// DiscoveryService handles the public client-facing surface: categories,
// provider search and availability browsing.
type DiscoveryService struct {
	providerRepo providerDomain.Repository
	serviceRepo  catalog.ServiceRepository
	categoryRepo catalog.CategoryRepository
	slotRepo     slotDomain.Repository
	reviewRepo   reviewDomain.Repository
	logger       *zap.Logger
}

// NewDiscoveryService creates a new DiscoveryService.
func NewDiscoveryService(
	providerRepo providerDomain.Repository,
	serviceRepo catalog.ServiceRepository,
	categoryRepo catalog.CategoryRepository,
	slotRepo slotDomain.Repository,
	reviewRepo reviewDomain.Repository,
	logger *zap.Logger,
) *DiscoveryService {
	return &DiscoveryService{
		providerRepo: providerRepo,
		serviceRepo:  serviceRepo,
		categoryRepo: categoryRepo,
		slotRepo:     slotRepo,
		reviewRepo:   reviewRepo,
		logger:       logger,
	}
}

// ListCategories retrieves the active categories.
func (s *DiscoveryService) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toCategoryDTOs(categories), nil
}

// SearchProviders retrieves verified providers matching the given filters.
// When coordinates are given, results carry their distance from the origin
// and are sorted nearest first; a positive radius drops providers outside it.
func (s *DiscoveryService) SearchProviders(ctx context.Context, req SearchProvidersRequest) ([]ProviderSearchResultDTO, error) {
	providers, err := s.providerRepo.ListVerified(ctx)
	if err != nil {
		return nil, err
	}

	var allowed map[uuid.UUID]bool
	if req.CategoryID != nil {
		ids, err := s.serviceRepo.ListProviderIDsByCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		allowed = make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			allowed[id] = true
		}
	}

	results := make([]ProviderSearchResultDTO, 0, len(providers))
	for _, p := range providers {
		if allowed != nil && !allowed[p.ID()] {
			continue
		}
		if req.City != "" && p.City() != req.City {
			continue
		}

		result := ProviderSearchResultDTO{ProviderDTO: toProviderDTO(p)}
		if req.Lat != nil && req.Lng != nil {
			d := haversineDistance(*req.Lat, *req.Lng, p.Lat(), p.Lng())
			if req.RadiusKm > 0 && d > req.RadiusKm {
				continue
			}
			result.DistanceKm = &d
		}
		results = append(results, result)
	}

	if req.Lat != nil && req.Lng != nil {
		sort.Slice(results, func(i, j int) bool {
			return *results[i].DistanceKm < *results[j].DistanceKm
		})
	}
	return results, nil
}

// GetProviderDetail retrieves the public provider page.
func (s *DiscoveryService) GetProviderDetail(ctx context.Context, providerID uuid.UUID) (*ProviderDetailDTO, error) {
	profile, err := s.providerRepo.FindByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	services, err := s.serviceRepo.ListActiveByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListVisibleByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	nextSlots, err := s.slotRepo.ListNextOpen(ctx, providerID, nextSlotsLimit)
	if err != nil {
		return nil, err
	}

	return &ProviderDetailDTO{
		Provider:      toProviderDTO(profile),
		Services:      toServiceDTOs(services),
		Reviews:       toReviewDTOs(reviews),
		AverageRating: averageRating(reviews),
		NextSlots:     toSlotDTOs(nextSlots),
	}, nil
}

// GetServiceSlots retrieves a service's future open slots ordered by start
// time.
func (s *DiscoveryService) GetServiceSlots(ctx context.Context, serviceID uuid.UUID) ([]SlotDTO, error) {
	svc, err := s.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListOpenByService(ctx, svc.ProviderID(), svc.ID())
	if err != nil {
		return nil, err
	}
	return toSlotDTOs(slots), nil
}

// --- Helpers ---

func toCategoryDTOs(categories []*catalog.Category) []CategoryDTO {
	dtos := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = toCategoryDTO(c)
	}
	return dtos
}

func toReviewDTOs(reviews []*reviewDomain.Review) []ReviewDTO {
	dtos := make([]ReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = toReviewDTO(r)
	}
	return dtos
}

func averageRating(reviews []*reviewDomain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating()
	}
	return float64(sum) / float64(len(reviews))
}

// haversineDistance calculates the distance between two coordinates in kilometers.
func haversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
