package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"parking-backend/config"
	"parking-backend/internal/api"
	"parking-backend/internal/auth"
	"parking-backend/internal/db"
	"parking-backend/internal/engine"
	"parking-backend/internal/model"
	"parking-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "parking-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	appStore := store.NewGormStore(gormDB)
	occupancyEngine := engine.New(appStore)
	authSvc := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if cfg.Seed.Enabled {
		if err := ensureAdmin(gormDB, &cfg.Seed); err != nil {
			logger.Fatalf("failed to seed admin: %v", err)
		}
		if err := ensureDefaultRate(appStore, &cfg.Seed); err != nil {
			logger.Fatalf("failed to seed default rate: %v", err)
		}
	}

	// Initialize router
	router := api.NewRouter(appStore, occupancyEngine, authSvc, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// ensureAdmin creates the configured admin account when no admin exists yet.
func ensureAdmin(gormDB *gorm.DB, seed *config.SeedConfig) error {
	var count int64
	if err := gormDB.Model(&model.Admin{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := model.Admin{
		Username:     seed.AdminUsername,
		PasswordHash: hash,
		Email:        seed.AdminEmail,
		Active:       true,
	}
	if err := gormDB.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("Default admin created: username=%s", admin.Username)
	return nil
}

// ensureDefaultRate introduces the configured default price rate when the
// catalog is empty, so fee computation works out of the box.
func ensureDefaultRate(s store.Store, seed *config.SeedConfig) error {
	rates, err := s.ListRates(context.Background())
	if err != nil {
		return err
	}
	if len(rates) > 0 {
		return nil
	}

	perHour, err := decimal.NewFromString(seed.DefaultPerHour)
	if err != nil {
		return fmt.Errorf("invalid seed.default_per_hour: %w", err)
	}
	perMinute, err := decimal.NewFromString(seed.DefaultPerMinute)
	if err != nil {
		return fmt.Errorf("invalid seed.default_per_minute: %w", err)
	}

	rate, err := s.IntroduceRate(context.Background(), perHour, perMinute, time.Now().UTC())
	if err != nil {
		return err
	}
	log.Printf("Default price rate created: %s/hour, %s/minute", rate.PerHour, rate.PerMinute)
	return nil
}
