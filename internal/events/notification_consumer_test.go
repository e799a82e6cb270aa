package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nearby-app/marketplace-api/pkg/kafka"
)

type recordedPush struct {
	userID string
	title  string
	body   string
}

type recordingPushSender struct {
	pushes []recordedPush
}

func (s *recordingPushSender) SendPush(_ context.Context, userID, title, body string) error {
	s.pushes = append(s.pushes, recordedPush{userID: userID, title: title, body: body})
	return nil
}

func eventMessage(t *testing.T, eventType string, data any) kafkago.Message {
	t.Helper()
	cloudEvent, err := kafka.NewCloudEvent("marketplace-api", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(cloudEvent)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func TestBookingEventConsumer_HandleMessage(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	newConsumer := func() (*BookingEventConsumer, *recordingPushSender) {
		sender := &recordingPushSender{}
		return &BookingEventConsumer{sender: sender, logger: zap.NewNop()}, sender
	}

	t.Run("requested pushes to the provider's user account", func(t *testing.T) {
		c, sender := newConsumer()
		providerUserID := uuid.New()
		msg := eventMessage(t, BookingRequested, BookingRequestedEvent{
			BookingID:      uuid.New(),
			ClientID:       uuid.New(),
			ProviderID:     uuid.New(),
			ProviderUserID: providerUserID,
			ServiceID:      uuid.New(),
			SlotID:         uuid.New(),
			SlotStart:      now.Add(24 * time.Hour),
			OccurredAt:     now,
		})

		require.NoError(t, c.handleMessage(ctx, msg))
		require.Len(t, sender.pushes, 1)
		assert.Equal(t, providerUserID.String(), sender.pushes[0].userID)
		assert.Equal(t, "New booking request", sender.pushes[0].title)
	})

	t.Run("requested without a provider owner is committed without a push", func(t *testing.T) {
		c, sender := newConsumer()
		msg := eventMessage(t, BookingRequested, BookingRequestedEvent{
			BookingID:  uuid.New(),
			ClientID:   uuid.New(),
			ProviderID: uuid.New(),
			OccurredAt: now,
		})

		require.NoError(t, c.handleMessage(ctx, msg))
		assert.Empty(t, sender.pushes)
	})

	t.Run("confirmed pushes to the client", func(t *testing.T) {
		c, sender := newConsumer()
		clientID := uuid.New()
		msg := eventMessage(t, BookingConfirmed, BookingConfirmedEvent{
			BookingID:  uuid.New(),
			ClientID:   clientID,
			ProviderID: uuid.New(),
			OccurredAt: now,
		})

		require.NoError(t, c.handleMessage(ctx, msg))
		require.Len(t, sender.pushes, 1)
		assert.Equal(t, clientID.String(), sender.pushes[0].userID)
	})

	t.Run("rejected pushes to the client", func(t *testing.T) {
		c, sender := newConsumer()
		clientID := uuid.New()
		msg := eventMessage(t, BookingRejected, BookingRejectedEvent{
			BookingID:  uuid.New(),
			ClientID:   clientID,
			ProviderID: uuid.New(),
			SlotID:     uuid.New(),
			OccurredAt: now,
		})

		require.NoError(t, c.handleMessage(ctx, msg))
		require.Len(t, sender.pushes, 1)
		assert.Equal(t, clientID.String(), sender.pushes[0].userID)
		assert.Equal(t, "Booking declined", sender.pushes[0].title)
	})

	t.Run("cancelled pushes to the provider's user account", func(t *testing.T) {
		c, sender := newConsumer()
		providerUserID := uuid.New()
		msg := eventMessage(t, BookingCancelled, BookingCancelledEvent{
			BookingID:      uuid.New(),
			ClientID:       uuid.New(),
			ProviderID:     uuid.New(),
			ProviderUserID: providerUserID,
			SlotID:         uuid.New(),
			OccurredAt:     now,
		})

		require.NoError(t, c.handleMessage(ctx, msg))
		require.Len(t, sender.pushes, 1)
		assert.Equal(t, providerUserID.String(), sender.pushes[0].userID)
		assert.Equal(t, "A client cancelled a booking on one of your slots.", sender.pushes[0].body)
	})

	t.Run("malformed payload is committed without a push", func(t *testing.T) {
		c, sender := newConsumer()

		require.NoError(t, c.handleMessage(ctx, kafkago.Message{Value: []byte("not json")}))
		assert.Empty(t, sender.pushes)
	})

	t.Run("unknown event type is ignored", func(t *testing.T) {
		c, sender := newConsumer()
		msg := eventMessage(t, "booking.unknown", map[string]string{"k": "v"})

		require.NoError(t, c.handleMessage(ctx, msg))
		assert.Empty(t, sender.pushes)
	})
}
