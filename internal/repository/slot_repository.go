package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	slotDomain "github.com/nearby-app/marketplace-api/internal/domain/slot"
	"github.com/nearby-app/marketplace-api/pkg/domain"
)

// SlotModel is the GORM model for the availability_slots table.
type SlotModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProviderID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ServiceID  *uuid.UUID `gorm:"type:uuid;index"`
	StartAt    time.Time  `gorm:"not null;index"`
	EndAt      time.Time  `gorm:"not null"`
	Timezone   string     `gorm:"not null;size:50"`
	IsBooked   bool       `gorm:"not null;default:false;index"`
}

// TableName returns the table name for the GORM model.
func (SlotModel) TableName() string {
	return "availability_slots"
}

// GormSlotRepository is the GORM-based implementation of slot.Repository.
type GormSlotRepository struct {
	db *gorm.DB
}

// NewGormSlotRepository creates a new GormSlotRepository.
func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

// FindByID retrieves a slot by its unique identifier.
func (r *GormSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*slotDomain.Slot, error) {
	var model SlotModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Slot", id.String())
		}
		return nil, fmt.Errorf("failed to find slot by ID: %w", err)
	}
	return toDomainSlot(&model), nil
}

// ListByProviderID retrieves all of a provider's slots ordered by start time.
func (r *GormSlotRepository) ListByProviderID(ctx context.Context, providerID uuid.UUID) ([]*slotDomain.Slot, error) {
	var models []SlotModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("start_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list provider slots: %w", err)
	}
	return toDomainSlots(models), nil
}

// ListOpenByService retrieves future unbooked slots for a provider/service pair.
func (r *GormSlotRepository) ListOpenByService(ctx context.Context, providerID, serviceID uuid.UUID) ([]*slotDomain.Slot, error) {
	var models []SlotModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("provider_id = ? AND service_id = ? AND is_booked = ? AND start_at >= ?",
			providerID, serviceID, false, time.Now().UTC()).
		Order("start_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list open service slots: %w", err)
	}
	return toDomainSlots(models), nil
}

// ListNextOpen retrieves a provider's next future unbooked slots.
func (r *GormSlotRepository) ListNextOpen(ctx context.Context, providerID uuid.UUID, limit int) ([]*slotDomain.Slot, error) {
	var models []SlotModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("provider_id = ? AND is_booked = ? AND start_at >= ?", providerID, false, time.Now().UTC()).
		Order("start_at ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list next open slots: %w", err)
	}
	return toDomainSlots(models), nil
}

// Claim atomically flips a slot from unbooked to booked. The conditional
// update is the single serialization point for booking creation: under N
// concurrent claims on one slot the row matches exactly once, so one caller
// wins and the rest observe zero affected rows.
func (r *GormSlotRepository) Claim(ctx context.Context, id uuid.UUID) (*slotDomain.Slot, error) {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Model(&SlotModel{}).
		Where("id = ? AND is_booked = ?", id, false).
		Update("is_booked", true)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, slotDomain.NewSlotTakenError()
	}
	return r.FindByID(ctx, id)
}

// Release unconditionally marks a slot as unbooked. Idempotent.
func (r *GormSlotRepository) Release(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Model(&SlotModel{}).
		Where("id = ?", id).
		Update("is_booked", false).Error; err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}

// Save persists a new slot.
func (r *GormSlotRepository) Save(ctx context.Context, s *slotDomain.Slot) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(toSlotModel(s)).Error; err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

// SaveAll persists a batch of new slots.
func (r *GormSlotRepository) SaveAll(ctx context.Context, slots []*slotDomain.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	models := make([]SlotModel, len(slots))
	for i, s := range slots {
		models[i] = *toSlotModel(s)
	}
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("failed to save slots: %w", err)
	}
	return nil
}

// Update persists changes to a slot's time range. The booked flag is not
// written here; it only moves through Claim and Release. The update is
// conditioned on the slot still being unbooked, the same way Claim guards the
// flag, so a claim landing after the caller's read cannot be rescheduled away.
func (r *GormSlotRepository) Update(ctx context.Context, s *slotDomain.Slot) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Model(&SlotModel{}).
		Where("id = ? AND is_booked = ?", s.ID(), false).
		Updates(map[string]interface{}{
			"start_at": s.StartAt(),
			"end_at":   s.EndAt(),
			"timezone": s.Timezone(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.lockedOrNotFound(ctx, s.ID())
	}
	return nil
}

// Delete removes a slot. Conditioned on the slot being unbooked so a
// concurrent claim wins over the delete.
func (r *GormSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).
		Where("id = ? AND is_booked = ?", id, false).
		Delete(&SlotModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.lockedOrNotFound(ctx, id)
	}
	return nil
}

// lockedOrNotFound distinguishes why a conditional write on an unbooked slot
// matched no rows: the slot is booked, or it does not exist.
func (r *GormSlotRepository) lockedOrNotFound(ctx context.Context, id uuid.UUID) error {
	var count int64
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Model(&SlotModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check slot state: %w", err)
	}
	if count == 0 {
		return domain.NewNotFoundError("Slot", id.String())
	}
	return slotDomain.NewSlotLockedError()
}

// DeleteUnbookedInRange removes a provider/service pair's unbooked slots
// starting inside [from, to).
func (r *GormSlotRepository) DeleteUnbookedInRange(ctx context.Context, providerID, serviceID uuid.UUID, from, to time.Time) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("provider_id = ? AND service_id = ? AND is_booked = ? AND start_at >= ? AND start_at < ?",
			providerID, serviceID, false, from, to).
		Delete(&SlotModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete unbooked slots: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toSlotModel(s *slotDomain.Slot) *SlotModel {
	return &SlotModel{
		ID:         s.ID(),
		ProviderID: s.ProviderID(),
		ServiceID:  s.ServiceID(),
		StartAt:    s.StartAt(),
		EndAt:      s.EndAt(),
		Timezone:   s.Timezone(),
		IsBooked:   s.IsBooked(),
	}
}

func toDomainSlot(m *SlotModel) *slotDomain.Slot {
	return slotDomain.Reconstruct(m.ID, m.ProviderID, m.ServiceID, m.StartAt, m.EndAt, m.Timezone, m.IsBooked)
}

func toDomainSlots(models []SlotModel) []*slotDomain.Slot {
	slots := make([]*slotDomain.Slot, len(models))
	for i, m := range models {
		slots[i] = toDomainSlot(&m)
	}
	return slots
}
