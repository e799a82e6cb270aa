package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// Service is a bookable offering published by a provider. Its duration drives
// generated slot length; its price is read-only input to booking creation.
type Service struct {
	id              uuid.UUID
	providerID      uuid.UUID
	categoryID      uuid.UUID
	title           string
	description     string
	durationMinutes int
	priceCents      int64
	isActive        bool
}

// NewService creates a new active service offering.
func NewService(providerID, categoryID uuid.UUID, title, description string, durationMinutes int, priceCents int64) (*Service, error) {
	if providerID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if categoryID == uuid.Nil {
		return nil, domain.NewValidationError("category ID is required")
	}
	if title == "" {
		return nil, domain.NewValidationError("service title is required")
	}
	if durationMinutes <= 0 {
		return nil, domain.NewValidationError("service duration must be positive")
	}
	if priceCents < 0 {
		return nil, domain.NewValidationError("service price cannot be negative")
	}

	return &Service{
		id:              uuid.New(),
		providerID:      providerID,
		categoryID:      categoryID,
		title:           title,
		description:     description,
		durationMinutes: durationMinutes,
		priceCents:      priceCents,
		isActive:        true,
	}, nil
}

// ReconstructService rebuilds a Service from persistence data (no validation).
func ReconstructService(
	id, providerID, categoryID uuid.UUID,
	title, description string,
	durationMinutes int,
	priceCents int64,
	isActive bool,
) *Service {
	return &Service{
		id:              id,
		providerID:      providerID,
		categoryID:      categoryID,
		title:           title,
		description:     description,
		durationMinutes: durationMinutes,
		priceCents:      priceCents,
		isActive:        isActive,
	}
}

// Getters.
func (s *Service) ID() uuid.UUID           { return s.id }
func (s *Service) ProviderID() uuid.UUID   { return s.providerID }
func (s *Service) CategoryID() uuid.UUID   { return s.categoryID }
func (s *Service) Title() string           { return s.title }
func (s *Service) Description() string     { return s.description }
func (s *Service) DurationMinutes() int    { return s.durationMinutes }
func (s *Service) PriceCents() int64       { return s.priceCents }
func (s *Service) IsActive() bool          { return s.isActive }

// Duration returns the service duration as a time.Duration.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.durationMinutes) * time.Minute
}

// IsOwnedBy checks if the service belongs to the given provider profile.
func (s *Service) IsOwnedBy(providerID uuid.UUID) bool {
	return s.providerID == providerID
}

// Update applies partial updates to the service.
func (s *Service) Update(title, description string, durationMinutes int, priceCents int64, isActive *bool) {
	if title != "" {
		s.title = title
	}
	if description != "" {
		s.description = description
	}
	if durationMinutes > 0 {
		s.durationMinutes = durationMinutes
	}
	if priceCents > 0 {
		s.priceCents = priceCents
	}
	if isActive != nil {
		s.isActive = *isActive
	}
}
