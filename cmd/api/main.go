package main

import (
	"context"
	"os"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"outlinehub/internal/catalog"
	"outlinehub/internal/config"
	handlers "outlinehub/internal/http/handler"
	"outlinehub/internal/http/middleware"
	"outlinehub/internal/logger"
	tracing "outlinehub/internal/otel"
	"outlinehub/internal/service"
	"outlinehub/internal/staging"
	"outlinehub/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	shutdownTracing, err := tracing.Init(context.Background(), log)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// Probe for durable staging support exactly once; the capability is
	// passed around explicitly, never re-probed.
	capability := staging.Detect(cfg.Staging.Dir)
	var repo staging.Repository
	if capability.Supported {
		repo = staging.NewFileRepository(capability.Store, log)
		log.Info("staging area ready", "mode", "durable", "dir", capability.Store.Dir())
	} else {
		repo = staging.NewSessionRepository(staging.NewSessionStore(), log)
		log.Warn("durable staging unavailable, falling back to metadata-only session store",
			"dir", cfg.Staging.Dir)
	}

	// Remote outline store (S3-compatible, MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	// Static course catalog for search
	cat, err := catalog.Load(cfg.Catalog.MappingPath)
	if err != nil {
		log.Error("failed to load course catalog", "error", err)
		os.Exit(1)
	}
	log.Info("course catalog loaded", "courses", cat.Len())

	pubSvc := service.NewPublishService(repo, objStore, log)
	outSvc := service.NewOutlineService(objStore, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    32 * 1024 * 1024, // outline PDFs
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// Structured request logs
	app.Use(middleware.Logger(log))
	// Distributed tracing for incoming requests
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Error("failed to register prometheus metrics", "error", err)
		os.Exit(1)
	}
	app.Use(promMW.Handler())

	// Register HTTP routes with injected dependencies
	handlers.RegisterRoutes(app, capability, repo, cat, pubSvc, outSvc, cfg.Catalog.SearchLimit, reg)

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
