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
	"go.uber.org/zap"

	httpapi "github.com/weathernow/weathernow/internal/api/http"
	"github.com/weathernow/weathernow/internal/config"
	"github.com/weathernow/weathernow/internal/prefs"
	"github.com/weathernow/weathernow/internal/scheduler"
	"github.com/weathernow/weathernow/internal/store"
	"github.com/weathernow/weathernow/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// Shared HTTP client for outbound provider calls; one timeout for all.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := weather.NewClient(httpClient, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, zlog)

	// Last-known conditions cache for offline fallback.
	cache := store.NewLastKnown(cfg.CacheMaxAge)

	service := weather.NewService(client, cache, zlog)
	if cfg.ForecastZone != "" {
		tz, err := time.LoadLocation(cfg.ForecastZone)
		if err != nil {
			zlog.Fatal("invalid FORECAST_TZ", zap.String("zone", cfg.ForecastZone), zap.Error(err))
		}
		service.SetForceZone(tz)
	}

	// Preference store: sqlite when a path is configured, memory otherwise.
	var kv prefs.KV
	if cfg.DBPath != "" {
		sqliteKV, err := prefs.NewSQLiteKV(cfg.DBPath)
		if err != nil {
			zlog.Fatal("failed to open preference database", zap.String("path", cfg.DBPath), zap.Error(err))
		}
		defer sqliteKV.Close()
		kv = sqliteKV
	} else {
		zlog.Warn("DB_PATH empty; preferences will not survive restarts")
		kv = prefs.NewMemoryKV()
	}
	preferences := prefs.NewStore(kv, zlog)

	// Background refresher keeping the cache warm for saved locations.
	refresher := scheduler.New(service, preferences, cfg.RefreshInterval, zlog)
	if err := refresher.Start(); err != nil {
		zlog.Fatal("failed to start refresher", zap.Error(err))
	}
	defer refresher.Stop()

	// Startup connectivity probe; a failure is worth knowing but not fatal.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	if err := client.Ping(pingCtx); err != nil {
		zlog.Warn("weather provider unreachable at startup", zap.Error(err))
	}
	cancelPing()

	app := fiber.New(fiber.Config{
		AppName:               "weathernow",
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weathernow",
		})
	})

	httpapi.RegisterRoutes(app, service, preferences)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
