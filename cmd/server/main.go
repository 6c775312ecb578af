package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediation_flow_go/config"
	"mediation_flow_go/db"
	"mediation_flow_go/handlers"
	"mediation_flow_go/middleware"
	"mediation_flow_go/models"
	"mediation_flow_go/repository"
	"mediation_flow_go/services"
	"mediation_flow_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	database, err := db.Open(cfg.DBPath, cfg.Environment, cfg.DBMaxOpenConns)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(database)

	// Run migrations
	if err := db.AutoMigrate(database, models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store := repository.NewGormStore(database)
	svc := services.New(store, services.SystemClock)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType, middleware.HeaderActorID, middleware.HeaderActorRole},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	done := make(chan struct{})
	var writeLimit echo.MiddlewareFunc
	if cfg.WriteRateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Requests: cfg.WriteRateLimit,
			Window:   time.Minute,
		})
		go limiter.Cleanup(10*time.Minute, done)
		writeLimit = limiter.Middleware()
	}

	handlers.New(svc, cfg, services.SystemClock).Register(e, writeLimit)

	// Follow-up reminders
	reminder := jobs.NewFollowUpReminder(svc, store.Persons(), cfg, services.SystemClock)
	scheduler, err := jobs.StartScheduler(cfg, reminder)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	close(done)
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
