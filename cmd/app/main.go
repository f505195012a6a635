package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymhub/internal/booking"
	"gymhub/internal/cache"
	"gymhub/internal/class"
	"gymhub/internal/config"
	"gymhub/internal/db"
	"gymhub/internal/gym"
	"gymhub/internal/logger"
	"gymhub/internal/notify"
	"gymhub/internal/payment"
	"gymhub/internal/server"
	"gymhub/internal/slot"
	"gymhub/internal/user"

	"github.com/redis/go-redis/v9"
)

// @title GymHub API
// @version 1.0
// @description Gym membership booking API: gyms, slots, bookings with payments, classes.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting GymHub application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unavailable, cache and notifications degraded", "addr", cfg.RedisAddr, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := notify.New(rdb, notify.Config{
		FromEmail:     cfg.EmailFrom,
		FromName:      cfg.EmailFromName,
		SMTPHost:      cfg.SMTPHost,
		SMTPPort:      cfg.SMTPPort,
		SMTPUser:      cfg.SMTPUser,
		SMTPPass:      cfg.SMTPPass,
		WebhookURL:    cfg.WebhookURL,
		WebhookSecret: cfg.WebhookSecret,
	})
	go notifier.Start(ctx)
	logger.Info("Notification worker started")

	userRepo := user.NewRepository(database)
	gymRepo := gym.NewRepository(database)
	slotRepo := slot.NewRepository(database)

	gymService := gym.NewService(gymRepo, cache.New(rdb, cfg.CacheTTL), cfg.DefaultCurrency, cfg.DBTimeout)

	bookingService := booking.NewService(booking.Deps{
		Repo:  booking.NewRepository(database),
		Slots: slotRepo,
		Gyms:  gymRepo,
		Users: userRepo,
		Gateway: payment.NewClient(payment.Config{
			BaseURL:   cfg.PaymentBaseURL,
			SecretKey: cfg.PaymentSecretKey,
			Timeout:   cfg.PaymentTimeout,
		}),
		Ledger:   payment.NewLedger(database),
		Notifier: notifier,
		Timeout:  cfg.DBTimeout,
	})

	srv := server.New(ctx, cfg, server.Handlers{
		Users:    user.NewHandler(user.NewService(userRepo, cfg.JWTSecret, cfg.DBTimeout)),
		Gyms:     gym.NewHandler(gymService),
		Slots:    slot.NewHandler(slot.NewService(slotRepo, gymService, cfg.DBTimeout)),
		Bookings: booking.NewHandler(bookingService),
		Classes:  class.NewHandler(class.NewService(class.NewRepository(database), gymService, userRepo, cfg.DBTimeout)),
	}, map[string]server.HealthCheck{
		"database": database.PingContext,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	cancel()

	logger.Info("Server stopped")
}
