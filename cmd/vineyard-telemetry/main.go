package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/vinelogic/vineyard-telemetry/internal/api/http"
	"github.com/vinelogic/vineyard-telemetry/internal/cloud"
	"github.com/vinelogic/vineyard-telemetry/internal/config"
	"github.com/vinelogic/vineyard-telemetry/internal/poller"
	"github.com/vinelogic/vineyard-telemetry/internal/store"
	"github.com/vinelogic/vineyard-telemetry/internal/telemetry"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// In-memory store: the only shared mutable state; lives and dies with
	// the process.
	memStore := store.NewMemoryStore(cfg.StoreCapacity)

	// Core service orchestrating normalization, storage and derived views.
	service := telemetry.NewService(memStore)

	// Background cloud poller, enabled only with complete credentials.
	if cfg.Cloud.Configured() {
		httpClient := &http.Client{
			Timeout: cfg.HTTPTimeout,
		}
		client := cloud.NewClient(httpClient, cfg.CloudAPIURL, cfg.Cloud)
		p := poller.New(client, service, cfg.PollInterval)
		if err := p.Start(); err != nil {
			log.Fatalf("failed to start poller: %v", err)
		}
		defer p.Stop()
	} else {
		log.Println("cloud credentials not configured; polling disabled, webhook ingestion only")
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "vineyard-telemetry",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "vineyard-telemetry",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
