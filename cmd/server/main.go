package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nearby-app/marketplace-api/internal/application"
	"github.com/nearby-app/marketplace-api/internal/config"
	bookingDomain "github.com/nearby-app/marketplace-api/internal/domain/booking"
	"github.com/nearby-app/marketplace-api/internal/events"
	"github.com/nearby-app/marketplace-api/internal/handler"
	"github.com/nearby-app/marketplace-api/internal/repository"
	"github.com/nearby-app/marketplace-api/pkg/auth"
	"github.com/nearby-app/marketplace-api/pkg/database"
	"github.com/nearby-app/marketplace-api/pkg/health"
	"github.com/nearby-app/marketplace-api/pkg/kafka"
	"github.com/nearby-app/marketplace-api/pkg/logger"
	"github.com/nearby-app/marketplace-api/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "marketplace-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting marketplace-api",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.ProviderProfileModel{},
			&repository.CategoryModel{},
			&repository.ServiceModel{},
			&repository.SlotModel{},
			&repository.BookingModel{},
			&repository.ReviewModel{},
			&repository.NotificationModel{},
			&repository.AuditLogModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	providerRepo := repository.NewGormProviderRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	slotRepo := repository.NewGormSlotRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	auditRepo := repository.NewGormAuditRepository(db)
	transactor := repository.NewGormTransactor(db)

	// Initialize application services
	policy := bookingDomain.NewCancellationPolicy(cfg.CancellationWindowMinutes)
	bookingService := application.NewBookingService(
		bookingRepo,
		slotRepo,
		serviceRepo,
		providerRepo,
		notificationRepo,
		auditRepo,
		transactor,
		policy,
		kafkaProducer,
		log,
	)
	authService := application.NewAuthService(userRepo, providerRepo, transactor, jwtManager, log)
	providerService := application.NewProviderService(providerRepo, serviceRepo, categoryRepo, slotRepo, transactor, log)
	discoveryService := application.NewDiscoveryService(providerRepo, serviceRepo, categoryRepo, slotRepo, reviewRepo, log)
	reviewService := application.NewReviewService(reviewRepo, bookingRepo, slotRepo, log)
	notificationService := application.NewNotificationService(notificationRepo, log)
	adminService := application.NewAdminService(
		categoryRepo,
		providerRepo,
		userRepo,
		reviewRepo,
		bookingRepo,
		notificationRepo,
		auditRepo,
		log,
	)

	// Initialize and start the booking event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "marketplace-api"
	bookingConsumer := events.NewBookingEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		events.NewLogPushSender(log),
		log,
	)
	defer func() { _ = bookingConsumer.Close() }()

	go func() {
		log.Info("starting booking event consumer")
		if err := bookingConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("booking event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryService)
	bookingHandler := handler.NewBookingHandler(bookingService, reviewService)
	providerHandler := handler.NewProviderHandler(providerService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	adminHandler := handler.NewAdminHandler(adminService, bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigin))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "marketplace-api")
	healthHandler.RegisterRoutes(router)

	// Register routes
	authHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	discoveryHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	providerHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	notificationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down marketplace-api...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("marketplace-api stopped")
}
