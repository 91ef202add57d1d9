package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logger := logging.Setup(cfg.LogLevel)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			logger = logging.Setup(cfg.LogLevel, logging.NewSentryHandler())
			defer sentry.Flush(2 * time.Second)
		}
	}

	if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Notification sinks
	hub := notify.NewHub(logger)
	store := notify.NewStoreHandler(database.DB)
	hub.SubscribeAll(notify.LogHandler(logger))
	hub.SubscribeAll(store.Handle)
	hub.SubscribeAll(metrics.NotificationHandler())

	// Services
	gamerService := services.NewGamerService(database.DB)
	gameService := services.NewGameService(database.DB)
	swapService := services.NewSwapService(database.DB, hub, cfg.DueThresholdDays)

	// Expiry sweep and notification retention
	scheduler, err := jobs.NewScheduler(swapService, database.DB, jobs.Options{
		SweepSchedule: cfg.SweepSchedule,
		Retention:     cfg.NotificationRetention,
		Logger:        logger,
	})
	if err != nil {
		slog.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(metrics.Middleware())

	routes.Setup(app, routes.Handlers{
		Health: handlers.NewHealthHandler(database.DB),
		Gamers: handlers.NewGamerHandler(gamerService),
		Games:  handlers.NewGameHandler(gameService),
		Swaps:  handlers.NewSwapHandler(swapService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "db_driver", cfg.DBDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(ctx)
	store.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
