package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/nearby-app/marketplace-api/internal/domain/booking"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID  uuid.UUID `gorm:"type:uuid;not null"`
	SlotID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Status     string    `gorm:"not null;size:20;index"`
	Note       string    `gorm:"size:1000"`
	Version    int64     `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// bookingDetailRow carries one row of the joined booking listing queries.
type bookingDetailRow struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	ProviderID        uuid.UUID
	ServiceID         uuid.UUID
	SlotID            uuid.UUID
	Status            string
	Note              string
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ServiceTitle      *string
	ServicePriceCents *int64
	SlotStartAt       *time.Time
	SlotEndAt         *time.Time
	ClientEmail       *string
	ClientFirstName   *string
	ClientLastName    *string
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByIDForClient retrieves a booking scoped to the owning client.
func (r *GormBookingRepository) FindByIDForClient(ctx context.Context, id, clientID uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findOne(ctx, "id = ? AND client_id = ?", id, clientID)
}

// FindByIDForProvider retrieves a booking scoped to the owning provider profile.
func (r *GormBookingRepository) FindByIDForProvider(ctx context.Context, id, providerID uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findOne(ctx, "id = ? AND provider_id = ?", id, providerID)
}

func (r *GormBookingRepository) findOne(ctx context.Context, query string, args ...interface{}) (*bookingDomain.Booking, error) {
	var model BookingModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", fmt.Sprintf("%v", args[0]))
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return toDomainBooking(&model)
}

// ListByClientID retrieves a client's bookings with service and slot summaries.
func (r *GormBookingRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]bookingDomain.Detail, error) {
	var rows []bookingDetailRow
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.id, bookings.client_id, bookings.provider_id, bookings.service_id,
			bookings.slot_id, bookings.status, bookings.note, bookings.version,
			bookings.created_at, bookings.updated_at,
			services.title AS service_title, services.price_cents AS service_price_cents,
			availability_slots.start_at AS slot_start_at, availability_slots.end_at AS slot_end_at`).
		Joins("LEFT JOIN services ON services.id = bookings.service_id").
		Joins("LEFT JOIN availability_slots ON availability_slots.id = bookings.slot_id").
		Where("bookings.client_id = ?", clientID).
		Order("bookings.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list client bookings: %w", err)
	}
	return toDetails(rows)
}

// ListByProviderID retrieves a provider's bookings with service, slot and
// client summaries.
func (r *GormBookingRepository) ListByProviderID(ctx context.Context, providerID uuid.UUID) ([]bookingDomain.Detail, error) {
	var rows []bookingDetailRow
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.id, bookings.client_id, bookings.provider_id, bookings.service_id,
			bookings.slot_id, bookings.status, bookings.note, bookings.version,
			bookings.created_at, bookings.updated_at,
			services.title AS service_title, services.price_cents AS service_price_cents,
			availability_slots.start_at AS slot_start_at, availability_slots.end_at AS slot_end_at,
			users.email AS client_email, users.first_name AS client_first_name, users.last_name AS client_last_name`).
		Joins("LEFT JOIN services ON services.id = bookings.service_id").
		Joins("LEFT JOIN availability_slots ON availability_slots.id = bookings.slot_id").
		Joins("LEFT JOIN users ON users.id = bookings.client_id").
		Where("bookings.provider_id = ?", providerID).
		Order("bookings.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list provider bookings: %w", err)
	}
	return toDetails(rows)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1 since
	// IncrementVersion was called before persisting).
	expectedVersion := bk.Version() - 1
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"note":       model.Note,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:         bk.ID(),
		ClientID:   bk.ClientID(),
		ProviderID: bk.ProviderID(),
		ServiceID:  bk.ServiceID(),
		SlotID:     bk.SlotID(),
		Status:     string(bk.Status()),
		Note:       bk.Note(),
		Version:    bk.Version(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return bookingDomain.Reconstruct(
		m.ID, m.ClientID, m.ProviderID, m.ServiceID, m.SlotID,
		status, m.Note, m.Version, m.CreatedAt, m.UpdatedAt,
	), nil
}

func toDetails(rows []bookingDetailRow) ([]bookingDomain.Detail, error) {
	details := make([]bookingDomain.Detail, len(rows))
	for i, row := range rows {
		status, err := bookingDomain.ParseBookingStatus(row.Status)
		if err != nil {
			return nil, err
		}

		detail := bookingDomain.Detail{
			Booking: bookingDomain.Reconstruct(
				row.ID, row.ClientID, row.ProviderID, row.ServiceID, row.SlotID,
				status, row.Note, row.Version, row.CreatedAt, row.UpdatedAt,
			),
		}
		if row.ServiceTitle != nil {
			price := int64(0)
			if row.ServicePriceCents != nil {
				price = *row.ServicePriceCents
			}
			detail.Service = &bookingDomain.ServiceSummary{
				ID:         row.ServiceID,
				Title:      *row.ServiceTitle,
				PriceCents: price,
			}
		}
		if row.SlotStartAt != nil && row.SlotEndAt != nil {
			detail.Slot = &bookingDomain.SlotSummary{
				ID:      row.SlotID,
				StartAt: *row.SlotStartAt,
				EndAt:   *row.SlotEndAt,
			}
		}
		if row.ClientEmail != nil {
			detail.Client = &bookingDomain.ClientSummary{
				ID:        row.ClientID,
				Email:     *row.ClientEmail,
				FirstName: stringOrEmpty(row.ClientFirstName),
				LastName:  stringOrEmpty(row.ClientLastName),
			}
		}
		details[i] = detail
	}
	return details, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
