package provider

import (
	"time"

	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// Profile is a provider's public business profile. A user holds at most one
// profile; bookings and slots reference the profile ID, not the user ID.
type Profile struct {
	id           uuid.UUID
	userID       uuid.UUID
	name         string
	description  string
	address      string
	city         string
	lat          float64
	lng          float64
	workingHours string
	verified     bool
	createdAt    time.Time
}

// NewProfile creates a new unverified provider profile.
func NewProfile(userID uuid.UUID, name, description, address, city string, lat, lng float64, workingHours string) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("provider name is required")
	}

	return &Profile{
		id:           uuid.New(),
		userID:       userID,
		name:         name,
		description:  description,
		address:      address,
		city:         city,
		lat:          lat,
		lng:          lng,
		workingHours: workingHours,
		createdAt:    time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Profile from persistence data (no validation).
func Reconstruct(
	id, userID uuid.UUID,
	name, description, address, city string,
	lat, lng float64,
	workingHours string,
	verified bool,
	createdAt time.Time,
) *Profile {
	return &Profile{
		id:           id,
		userID:       userID,
		name:         name,
		description:  description,
		address:      address,
		city:         city,
		lat:          lat,
		lng:          lng,
		workingHours: workingHours,
		verified:     verified,
		createdAt:    createdAt,
	}
}

// Getters.
func (p *Profile) ID() uuid.UUID        { return p.id }
func (p *Profile) UserID() uuid.UUID    { return p.userID }
func (p *Profile) Name() string         { return p.name }
func (p *Profile) Description() string  { return p.description }
func (p *Profile) Address() string      { return p.address }
func (p *Profile) City() string         { return p.city }
func (p *Profile) Lat() float64         { return p.lat }
func (p *Profile) Lng() float64         { return p.lng }
func (p *Profile) WorkingHours() string { return p.workingHours }
func (p *Profile) Verified() bool       { return p.verified }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }

// Update applies partial updates to the profile.
func (p *Profile) Update(name, description, address, city string, lat, lng float64, workingHours string) {
	if name != "" {
		p.name = name
	}
	if description != "" {
		p.description = description
	}
	if address != "" {
		p.address = address
	}
	if city != "" {
		p.city = city
	}
	if lat != 0 || lng != 0 {
		p.lat = lat
		p.lng = lng
	}
	if workingHours != "" {
		p.workingHours = workingHours
	}
}

// Verify marks the profile as verified by an admin.
func (p *Profile) Verify() {
	p.verified = true
}
