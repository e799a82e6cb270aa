//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nearby-app/marketplace-api/internal/application"
	bookingDomain "github.com/nearby-app/marketplace-api/internal/domain/booking"
	bookingEvents "github.com/nearby-app/marketplace-api/internal/events"
	"github.com/nearby-app/marketplace-api/internal/repository"
	"github.com/nearby-app/marketplace-api/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	Consumer        *bookingEvents.BookingEventConsumer
	CleanupProducer func()
}

// marketplaceFixture is a seeded client/provider/service/slot graph ready for
// booking.
type marketplaceFixture struct {
	ClientID       uuid.UUID
	ProviderUserID uuid.UUID
	ProviderID     uuid.UUID
	ServiceID      uuid.UUID
	SlotID         uuid.UUID
	SlotStart      time.Time
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_marketplace",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_marketplace sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(
		&repository.UserModel{},
		&repository.ProviderProfileModel{},
		&repository.CategoryModel{},
		&repository.ServiceModel{},
		&repository.SlotModel{},
		&repository.BookingModel{},
		&repository.ReviewModel{},
		&repository.NotificationModel{},
		&repository.AuditLogModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, bookingEvents.TopicBookingEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack against real
// infrastructure.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	slotRepo := repository.NewGormSlotRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	providerRepo := repository.NewGormProviderRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	auditRepo := repository.NewGormAuditRepository(db)
	transactor := repository.NewGormTransactor(db)

	producer := kafka.NewProducer(brokers, logger)
	policy := bookingDomain.NewCancellationPolicy(60)
	bookingSvc := application.NewBookingService(
		bookingRepo, slotRepo, serviceRepo, providerRepo,
		notificationRepo, auditRepo, transactor, policy, producer, logger)

	groupID := fmt.Sprintf("test-marketplace-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewBookingEventConsumer(
		brokers, groupID, bookingEvents.NewLogPushSender(logger), logger)

	return &bookingStack{
		Service:         bookingSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedMarketplace inserts a client, a verified provider with one active
// service, and one open slot starting 48 hours out.
func seedMarketplace(t *testing.T, db *gorm.DB) *marketplaceFixture {
	t.Helper()
	now := time.Now().UTC()
	hash, err := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)
	require.NoError(t, err)

	client := repository.UserModel{
		ID: uuid.New(), Email: fmt.Sprintf("client-%s@test.local", uuid.New().String()[:8]),
		PasswordHash: string(hash), Role: "CLIENT", Status: "ACTIVE",
		FirstName: "Test", LastName: "Client",
		CreatedAt: now,
	}
	require.NoError(t, db.Create(&client).Error)

	providerUser := repository.UserModel{
		ID: uuid.New(), Email: fmt.Sprintf("provider-%s@test.local", uuid.New().String()[:8]),
		PasswordHash: string(hash), Role: "PROVIDER", Status: "ACTIVE",
		FirstName: "Test", LastName: "Provider",
		CreatedAt: now,
	}
	require.NoError(t, db.Create(&providerUser).Error)

	profile := repository.ProviderProfileModel{
		ID: uuid.New(), UserID: providerUser.ID,
		Name: "Integration Cleaning Co", Description: "test provider",
		Address: "1 Test St", City: "Jakarta",
		Lat: -6.2088, Lng: 106.8456,
		WorkingHours: "Mon-Fri 09:00-17:00", Verified: true,
		CreatedAt: now,
	}
	require.NoError(t, db.Create(&profile).Error)

	category := repository.CategoryModel{
		ID: uuid.New(), Name: fmt.Sprintf("Cleaning %s", uuid.New().String()[:8]),
		Icon: "broom", IsActive: true,
	}
	require.NoError(t, db.Create(&category).Error)

	service := repository.ServiceModel{
		ID: uuid.New(), ProviderID: profile.ID, CategoryID: category.ID,
		Title: "Deep clean", Description: "integration test service",
		DurationMinutes: 120, PriceCents: 50000, IsActive: true,
	}
	require.NoError(t, db.Create(&service).Error)

	slotStart := now.Add(48 * time.Hour).Truncate(time.Second)
	serviceID := service.ID
	slot := repository.SlotModel{
		ID: uuid.New(), ProviderID: profile.ID, ServiceID: &serviceID,
		StartAt: slotStart, EndAt: slotStart.Add(2 * time.Hour),
		Timezone: "Asia/Jakarta", IsBooked: false,
	}
	require.NoError(t, db.Create(&slot).Error)

	return &marketplaceFixture{
		ClientID:       client.ID,
		ProviderUserID: providerUser.ID,
		ProviderID:     profile.ID,
		ServiceID:      service.ID,
		SlotID:         slot.ID,
		SlotStart:      slotStart,
	}
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
// consumeOneEvent reads the topic until it sees an event of the expected
// type, returning the decoded envelope and the raw message key.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) (kafka.CloudEvent, []byte) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce, msg.Key
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
