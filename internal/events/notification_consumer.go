package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nearby-app/marketplace-api/pkg/kafka"
)

// PushSender delivers a push notification to a single user's devices.
type PushSender interface {
	SendPush(ctx context.Context, userID string, title, body string) error
}

// BookingEventConsumer listens to booking lifecycle events and dispatches push
// notifications to the affected users. Delivery is best effort: a failed push
// is logged and the message is still committed.
type BookingEventConsumer struct {
	consumer *kafka.Consumer
	sender   PushSender
	logger   *zap.Logger
}

// NewBookingEventConsumer creates a new BookingEventConsumer.
func NewBookingEventConsumer(
	brokers []string,
	groupID string,
	sender PushSender,
	logger *zap.Logger,
) *BookingEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger)
	return &BookingEventConsumer{
		consumer: consumer,
		sender:   sender,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (c *BookingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *BookingEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *BookingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingRequested:
		var evt BookingRequestedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse BookingRequestedEvent data", zap.Error(err))
			return nil
		}
		// ProviderID is the profile, not a user account; only the owning
		// user can receive a push.
		if evt.ProviderUserID == uuid.Nil {
			c.logger.Warn("booking.requested carries no provider owner, skipping push",
				zap.String("booking_id", evt.BookingID.String()))
			return nil
		}
		c.push(ctx, evt.ProviderUserID.String(), "New booking request",
			"A client requested one of your slots.")
	case BookingConfirmed:
		var evt BookingConfirmedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse BookingConfirmedEvent data", zap.Error(err))
			return nil
		}
		c.push(ctx, evt.ClientID.String(), "Booking confirmed",
			"Your booking has been confirmed by the provider.")
	case BookingRejected:
		var evt BookingRejectedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse BookingRejectedEvent data", zap.Error(err))
			return nil
		}
		c.push(ctx, evt.ClientID.String(), "Booking declined",
			"The provider declined your booking request.")
	case BookingCancelled:
		var evt BookingCancelledEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse BookingCancelledEvent data", zap.Error(err))
			return nil
		}
		if evt.ProviderUserID == uuid.Nil {
			c.logger.Warn("booking.cancelled carries no provider owner, skipping push",
				zap.String("booking_id", evt.BookingID.String()))
			return nil
		}
		c.push(ctx, evt.ProviderUserID.String(), "Booking cancelled",
			"A client cancelled a booking on one of your slots.")
	default:
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
	}
	return nil
}

func (c *BookingEventConsumer) push(ctx context.Context, userID, title, body string) {
	if err := c.sender.SendPush(ctx, userID, title, body); err != nil {
		c.logger.Error("failed to dispatch push notification",
			zap.String("user_id", userID),
			zap.String("title", title),
			zap.Error(err),
		)
	}
}

// LogPushSender is a PushSender that writes deliveries to the service log.
// It stands in for a real push gateway integration.
type LogPushSender struct {
	logger *zap.Logger
}

// NewLogPushSender creates a LogPushSender.
func NewLogPushSender(logger *zap.Logger) *LogPushSender {
	return &LogPushSender{logger: logger}
}

// SendPush logs the notification instead of delivering it.
func (s *LogPushSender) SendPush(_ context.Context, userID, title, body string) error {
	s.logger.Info("push notification dispatched",
		zap.String("user_id", userID),
		zap.String("title", title),
		zap.String("body", body),
	)
	return nil
}
