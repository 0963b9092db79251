package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"tariffapi/docs"
	"tariffapi/internal/auth"
	"tariffapi/internal/config"
	"tariffapi/internal/database"
	"tariffapi/internal/database/migration"
	handlers "tariffapi/internal/http/handler"
	"tariffapi/internal/http/middleware"
	"tariffapi/internal/ingest"
	"tariffapi/internal/logging"
	"tariffapi/internal/metrics"
	"tariffapi/internal/ocr"
	"tariffapi/internal/ocr/fitz"
	"tariffapi/internal/ocr/tesseract"
	tracing "tariffapi/internal/otel"
	"tariffapi/internal/repository"
	"tariffapi/internal/repository/file"
	"tariffapi/internal/repository/postgres"
	"tariffapi/internal/service"
	"tariffapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Tariff API
// @version 1.0
// @description Ingests bus-route tariff spreadsheets and scans into canonical tariff records.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ingestMetrics, err := metrics.NewIngest(reg)
	if err != nil {
		return fmt.Errorf("register ingest metrics: %w", err)
	}

	var health []handlers.Pinger

	repo, closeRepo, pinger, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()
	if pinger != nil {
		health = append(health, pinger)
	}

	// Archiving of uploaded sources is optional
	var objStore storage.Storage
	if cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("initialize object storage: %w", err)
		}
		logger.Info("source archiving enabled", zap.String("bucket", cfg.MinIO.Bucket))
	}

	var table ingest.SynonymTable
	if cfg.Ingest.SynonymsFile != "" {
		table, err = ingest.LoadSynonyms(cfg.Ingest.SynonymsFile)
		if err != nil {
			return fmt.Errorf("load header synonyms: %w", err)
		}
	}
	normalizer := ingest.NewNormalizer(ingest.NewHeaderMapper(table))

	extractorOpts := []ocr.Option{ocr.WithMetrics(ingestMetrics), ocr.WithLogger(logger)}
	if cfg.Redis.Addr != "" {
		rdb, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		extractorOpts = append(extractorOpts, ocr.WithCache(ocr.NewRedisCache(rdb, time.Duration(cfg.Redis.TTLSec)*time.Second)))
		health = append(health, handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }))
	}
	extractor := ocr.NewExtractor(
		tesseract.NewRecognizer(cfg.OCR.Concurrency),
		fitz.NewRasterizer(cfg.OCR.DPI),
		ocr.Config{
			Language:    cfg.OCR.Language,
			Timeout:     time.Duration(cfg.OCR.TimeoutSec) * time.Second,
			Concurrency: cfg.OCR.Concurrency,
		},
		extractorOpts...,
	)

	tariffSvc := service.NewTariffService(repo, objStore, normalizer, ingestMetrics, logger)
	extractionSvc := service.NewExtractionService(extractor, service.TemplateSource{
		Path:  cfg.Export.TemplatePath,
		Key:   cfg.Export.TemplateKey,
		Store: objStore,
	}, ingestMetrics, logger)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.Ingest.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Identify(auth.NewAdminKey(cfg.AdminKey)))

	handlers.RegisterRoutes(app, handlers.Deps{
		Tariffs:    tariffSvc,
		Extraction: extractionSvc,
		Health:     health,
		Gatherer:   reg,
		OCRLimiter: middleware.RateLimit(cfg.OCR.RatePerSec, cfg.OCR.RateBurst),
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr), zap.String("store", cfg.Store.Driver))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

// openRepository builds the tariff store selected by STORE_DRIVER. The returned
// Pinger is nil for stores without a remote dependency.
func openRepository(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (repository.TariffRepository, func(), handlers.Pinger, error) {
	switch cfg.Store.Driver {
	case "", "file":
		store, err := file.Open(cfg.Store.FilePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open tariff store: %w", err)
		}
		logger.Info("tariff store opened", zap.String("driver", "file"), zap.String("path", cfg.Store.FilePath))
		return store, func() {}, nil, nil
	case "postgres":
		db, err := database.NewPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		return postgres.NewTariffPostgres(db), func() { db.Close() }, db, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE_DRIVER %q, want file or postgres", cfg.Store.Driver)
	}
}
