package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"campusride/internal/app"
	"campusride/internal/config"
	"campusride/internal/handler"
	internalRedis "campusride/internal/redis"
	"campusride/internal/repository/postgres"
	"campusride/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	var lockStore internalRedis.LockStoreInterface
	if cfg.Coordinator.DistributedLocks {
		lockStore = internalRedis.NewLockStore(redisClient)
	}
	cacheStore := internalRedis.NewCacheStore(redisClient)
	presenceStore := internalRedis.NewPresenceStore(redisClient)

	// Initialize repositories.
	sessionRepo := postgres.NewSessionRepository(db)
	roomRepo := postgres.NewChatRoomRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	txRunner := postgres.NewTxRunner(db)

	// Initialize services. One BookingLocks instance is shared so all
	// writes for a booking serialize on the same lock.
	locks := service.NewBookingLocks()
	notificationService := service.NewNotificationService(presenceStore)
	receiptService := service.NewReceiptService(notificationService)
	coordinator := service.NewCoordinator(
		txRunner, sessionRepo, roomRepo, paymentRepo, driverRepo,
		locks, lockStore, cacheStore, notificationService,
	)
	chatService := service.NewChatService(
		txRunner, roomRepo, messageRepo, locks, presenceStore, notificationService,
	)
	paymentService := service.NewPaymentService(
		paymentRepo, sessionRepo, locks, notificationService, receiptService,
	)

	// Initialize handlers.
	sessionHandler := handler.NewSessionHandler(coordinator)
	chatHandler := handler.NewChatHandler(chatService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	driverHandler := handler.NewDriverHandler(driverRepo)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		SessionHandler: sessionHandler,
		ChatHandler:    chatHandler,
		PaymentHandler: paymentHandler,
		DriverHandler:  driverHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
