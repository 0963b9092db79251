package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tariffapi/internal/service"
)

// Deps carries everything RegisterRoutes wires into handlers.
type Deps struct {
	Tariffs    service.TariffService
	Extraction service.ExtractionService
	// Health dependencies pinged by /health; none means always healthy.
	Health []Pinger
	// Gatherer backs /metrics; nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
	// OCRLimiter guards the OCR upload endpoint; nil means unlimited.
	OCRLimiter fiber.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.Health...))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	preview := PreviewTariffs(d.Tariffs)
	upload := UploadTariffs(d.Tariffs)

	api := app.Group("/api")
	api.Post("/tariffs/preview", preview)
	api.Post("/tariffs/upload", upload)
	api.Get("/uploads", ListUploads(d.Tariffs))
	api.Delete("/uploads/:id", DeleteUpload(d.Tariffs))

	// legacy paths used by the existing front end
	app.Post("/upload_excel", preview)
	api.Post("/upload_bakanlik_excel", upload)

	ocrUpload := []fiber.Handler{ExtractOCR(d.Extraction)}
	if d.OCRLimiter != nil {
		ocrUpload = append([]fiber.Handler{d.OCRLimiter}, ocrUpload...)
	}
	api.Post("/ocr/upload", ocrUpload...)
	api.Post("/ocr/generate", GenerateExport(d.Extraction))
}
