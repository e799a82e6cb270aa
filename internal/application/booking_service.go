package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nearby-app/marketplace-api/internal/domain/audit"
	bookingDomain "github.com/nearby-app/marketplace-api/internal/domain/booking"
	"github.com/nearby-app/marketplace-api/internal/domain/catalog"
	notificationDomain "github.com/nearby-app/marketplace-api/internal/domain/notification"
	providerDomain "github.com/nearby-app/marketplace-api/internal/domain/provider"
	slotDomain "github.com/nearby-app/marketplace-api/internal/domain/slot"
	"github.com/nearby-app/marketplace-api/internal/events"
	"github.com/nearby-app/marketplace-api/pkg/database"
	"github.com/nearby-app/marketplace-api/pkg/domain"
	"github.com/nearby-app/marketplace-api/pkg/kafka"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	SlotID    uuid.UUID `json:"slot_id" binding:"required"`
	Note      string    `json:"note"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	ServiceID  uuid.UUID `json:"service_id"`
	SlotID     uuid.UUID `json:"slot_id"`
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookingDetailDTO is a booking with its joined service, slot and client data
// for listing views.
type BookingDetailDTO struct {
	BookingDTO
	Service *ServiceSummaryDTO `json:"service,omitempty"`
	Slot    *SlotSummaryDTO    `json:"slot,omitempty"`
	Client  *ClientSummaryDTO  `json:"client,omitempty"`
}

// ServiceSummaryDTO is the service data joined onto booking listings.
type ServiceSummaryDTO struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"price_cents"`
}

// SlotSummaryDTO is the slot data joined onto booking listings.
type SlotSummaryDTO struct {
	ID      uuid.UUID `json:"id"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// ClientSummaryDTO is the client data joined onto provider booking listings.
type ClientSummaryDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// BookingService orchestrates the booking lifecycle: slot claim plus booking
// insert in one transaction, provider accept/reject, client cancellation
// under the cancellation window, and the paired slot release.
type BookingService struct {
	bookingRepo      bookingDomain.Repository
	slotRepo         slotDomain.Repository
	serviceRepo      catalog.ServiceRepository
	providerRepo     providerDomain.Repository
	notificationRepo notificationDomain.Repository
	auditRepo        audit.Repository
	transactor       database.Transactor
	policy           bookingDomain.CancellationPolicy
	producer         *kafka.Producer
	logger           *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo bookingDomain.Repository,
	slotRepo slotDomain.Repository,
	serviceRepo catalog.ServiceRepository,
	providerRepo providerDomain.Repository,
	notificationRepo notificationDomain.Repository,
	auditRepo audit.Repository,
	transactor database.Transactor,
	policy bookingDomain.CancellationPolicy,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:      bookingRepo,
		slotRepo:         slotRepo,
		serviceRepo:      serviceRepo,
		providerRepo:     providerRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		transactor:       transactor,
		policy:           policy,
		producer:         producer,
		logger:           logger,
	}
}

// CreateBooking claims the requested slot and creates a PENDING booking in a
// single transaction. Under concurrent requests for the same slot exactly one
// caller wins; the rest get SLOT_TAKEN.
func (s *BookingService) CreateBooking(ctx context.Context, clientID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	svc, err := s.serviceRepo.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive() {
		return nil, domain.NewValidationError("service is not active")
	}

	sl, err := s.slotRepo.FindByID(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !sl.IsOwnedBy(svc.ProviderID()) {
		return nil, slotDomain.NewProviderMismatchError()
	}
	if sl.ServiceID() != nil && *sl.ServiceID() != svc.ID() {
		return nil, slotDomain.NewProviderMismatchError()
	}
	if sl.IsBooked() {
		return nil, slotDomain.NewSlotTakenError()
	}
	if !sl.StartAt().After(time.Now().UTC()) {
		return nil, domain.NewValidationError("slot is in the past")
	}

	bk, err := bookingDomain.NewBooking(clientID, svc.ProviderID(), svc.ID(), sl.ID(), req.Note)
	if err != nil {
		return nil, err
	}

	// Claim and insert commit or roll back together. The claim is the
	// serialization point: losing racers fail here and nothing is written.
	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.slotRepo.Claim(txCtx, sl.ID()); err != nil {
			return err
		}
		return s.bookingRepo.Save(txCtx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, clientID, "BOOKING_CREATED", "booking", bk.ID(), map[string]any{
		"slot_id":    sl.ID().String(),
		"service_id": svc.ID().String(),
	})
	providerUserID := s.resolveProviderUser(ctx, bk.ProviderID())
	if providerUserID != uuid.Nil {
		s.notify(ctx, providerUserID, notificationDomain.TypeBookingCreated,
			"New booking request", "A client requested one of your slots.")
	}
	s.publishEvent(ctx, events.BookingRequested, bk.ID().String(), events.BookingRequestedEvent{
		BookingID:      bk.ID(),
		ClientID:       bk.ClientID(),
		ProviderID:     bk.ProviderID(),
		ProviderUserID: providerUserID,
		ServiceID:      bk.ServiceID(),
		SlotID:         bk.SlotID(),
		SlotStart:      sl.StartAt(),
		OccurredAt:     time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// AcceptBooking transitions a PENDING booking to CONFIRMED. The slot stays
// claimed.
func (s *BookingService) AcceptBooking(ctx context.Context, providerUserID, bookingID uuid.UUID) (*BookingDTO, error) {
	profile, err := s.requireProviderProfile(ctx, providerUserID)
	if err != nil {
		return nil, err
	}
	providerID := profile.ID()

	bk, err := s.bookingRepo.FindByIDForProvider(ctx, bookingID, providerID)
	if err != nil {
		return nil, err
	}

	if err := bk.Confirm(providerID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookingRepo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.audit(ctx, providerUserID, "BOOKING_CONFIRMED", "booking", bk.ID(), nil)
	s.notify(ctx, bk.ClientID(), notificationDomain.TypeBookingConfirmed,
		"Booking confirmed", "Your booking has been confirmed by the provider.")
	s.publishEvent(ctx, events.BookingConfirmed, bk.ID().String(), events.BookingConfirmedEvent{
		BookingID:  bk.ID(),
		ClientID:   bk.ClientID(),
		ProviderID: bk.ProviderID(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// RejectBooking transitions a PENDING booking to REJECTED and releases its
// slot in the same transaction, so the slot reopens exactly when the booking
// leaves PENDING.
func (s *BookingService) RejectBooking(ctx context.Context, providerUserID, bookingID uuid.UUID) (*BookingDTO, error) {
	profile, err := s.requireProviderProfile(ctx, providerUserID)
	if err != nil {
		return nil, err
	}
	providerID := profile.ID()

	bk, err := s.bookingRepo.FindByIDForProvider(ctx, bookingID, providerID)
	if err != nil {
		return nil, err
	}

	if err := bk.Reject(providerID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Update(txCtx, bk); err != nil {
			return err
		}
		return s.slotRepo.Release(txCtx, bk.SlotID())
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, providerUserID, "BOOKING_REJECTED", "booking", bk.ID(), map[string]any{
		"slot_id": bk.SlotID().String(),
	})
	s.notify(ctx, bk.ClientID(), notificationDomain.TypeBookingRejected,
		"Booking declined", "The provider declined your booking request.")
	s.publishEvent(ctx, events.BookingRejected, bk.ID().String(), events.BookingRejectedEvent{
		BookingID:  bk.ID(),
		ClientID:   bk.ClientID(),
		ProviderID: bk.ProviderID(),
		SlotID:     bk.SlotID(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a client's PENDING or CONFIRMED booking and releases
// its slot. Cancellation is allowed strictly before the slot's start minus
// the configured window.
func (s *BookingService) CancelBooking(ctx context.Context, clientID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookingRepo.FindByIDForClient(ctx, bookingID, clientID)
	if err != nil {
		return nil, err
	}
	if !bk.Status().CanBeCancelled() {
		return nil, domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.StatusCancelled))
	}

	sl, err := s.slotRepo.FindByID(ctx, bk.SlotID())
	if err != nil {
		return nil, err
	}
	if !s.policy.IsCancellable(sl.StartAt(), time.Now().UTC()) {
		return nil, bookingDomain.NewCancellationWindowPassedError(s.policy.WindowMinutes())
	}

	if err := bk.Cancel(clientID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Update(txCtx, bk); err != nil {
			return err
		}
		return s.slotRepo.Release(txCtx, bk.SlotID())
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, clientID, "BOOKING_CANCELLED", "booking", bk.ID(), map[string]any{
		"slot_id": bk.SlotID().String(),
	})
	providerUserID := s.resolveProviderUser(ctx, bk.ProviderID())
	if providerUserID != uuid.Nil {
		s.notify(ctx, providerUserID, notificationDomain.TypeBookingCancelled,
			"Booking cancelled", "A client cancelled a booking.")
	}
	s.publishEvent(ctx, events.BookingCancelled, bk.ID().String(), events.BookingCancelledEvent{
		BookingID:      bk.ID(),
		ClientID:       bk.ClientID(),
		ProviderID:     bk.ProviderID(),
		ProviderUserID: providerUserID,
		SlotID:         bk.SlotID(),
		OccurredAt:     time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetClientBooking retrieves a single booking scoped to the owning client.
func (s *BookingService) GetClientBooking(ctx context.Context, clientID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookingRepo.FindByIDForClient(ctx, bookingID, clientID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetClientBookings retrieves a client's bookings with service and slot
// summaries, newest first.
func (s *BookingService) GetClientBookings(ctx context.Context, clientID uuid.UUID) ([]BookingDetailDTO, error) {
	details, err := s.bookingRepo.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toBookingDetailDTOs(details), nil
}

// GetProviderBookings retrieves a provider's bookings with service, slot and
// client summaries, newest first.
func (s *BookingService) GetProviderBookings(ctx context.Context, providerUserID uuid.UUID) ([]BookingDetailDTO, error) {
	profile, err := s.requireProviderProfile(ctx, providerUserID)
	if err != nil {
		return nil, err
	}

	details, err := s.bookingRepo.ListByProviderID(ctx, profile.ID())
	if err != nil {
		return nil, err
	}
	return toBookingDetailDTOs(details), nil
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookingRepo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
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

func toBookingDetailDTOs(details []bookingDomain.Detail) []BookingDetailDTO {
	dtos := make([]BookingDetailDTO, len(details))
	for i, d := range details {
		dto := BookingDetailDTO{BookingDTO: toBookingDTO(d.Booking)}
		if d.Service != nil {
			dto.Service = &ServiceSummaryDTO{
				ID:         d.Service.ID,
				Title:      d.Service.Title,
				PriceCents: d.Service.PriceCents,
			}
		}
		if d.Slot != nil {
			dto.Slot = &SlotSummaryDTO{
				ID:      d.Slot.ID,
				StartAt: d.Slot.StartAt,
				EndAt:   d.Slot.EndAt,
			}
		}
		if d.Client != nil {
			dto.Client = &ClientSummaryDTO{
				ID:        d.Client.ID,
				Email:     d.Client.Email,
				FirstName: d.Client.FirstName,
				LastName:  d.Client.LastName,
			}
		}
		dtos[i] = dto
	}
	return dtos
}

// notify persists an in-app notification. Failures are logged, never
// propagated: a missed notification must not fail the booking operation.
func (s *BookingService) notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) {
	n := notificationDomain.New(userID, notifType, title, body)
	if err := s.notificationRepo.Save(ctx, n); err != nil {
		s.logger.Error("failed to save notification",
			zap.String("user_id", userID.String()),
			zap.String("type", notifType),
			zap.Error(err),
		)
	}
}

// requireProviderProfile resolves the provider profile owned by the given
// user.
func (s *BookingService) requireProviderProfile(ctx context.Context, userID uuid.UUID) (*providerDomain.Profile, error) {
	profile, err := s.providerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, NewNoProfileError()
	}
	return profile, nil
}

// resolveProviderUser maps a provider profile to its owning user account.
// Returns uuid.Nil when the profile cannot be loaded; callers treat that as
// "nobody to notify".
func (s *BookingService) resolveProviderUser(ctx context.Context, providerID uuid.UUID) uuid.UUID {
	profile, err := s.providerRepo.FindByID(ctx, providerID)
	if err != nil {
		s.logger.Error("failed to resolve provider owner",
			zap.String("provider_id", providerID.String()),
			zap.Error(err),
		)
		return uuid.Nil
	}
	return profile.UserID()
}

// audit records an audit entry. Best effort, same as notify.
func (s *BookingService) audit(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, metadata map[string]any) {
	entry := audit.NewEntry(actorID, action, entityType, entityID, metadata)
	if err := s.auditRepo.Save(ctx, entry); err != nil {
		s.logger.Error("failed to save audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent("marketplace-api", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
