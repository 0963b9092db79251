package service

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"tariffapi/internal/export"
	"tariffapi/internal/metrics"
	"tariffapi/internal/model"
	"tariffapi/internal/ocr"
	"tariffapi/internal/storage"
)

// BatchExtractor runs OCR over a batch of files.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, inputs []ocr.Input, lang string) []ocr.FileResult
}

// ExtractResult is the outcome of an OCR batch. Data holds the candidates of every
// successful file in input order.
type ExtractResult struct {
	Data  []model.Candidate `json:"data"`
	Files []ocr.FileResult  `json:"files"`
}

// ExtractionService defines the OCR extraction and export use cases.
type ExtractionService interface {
	// Extract recognizes every file and collects route/price candidates.
	// A failing file is reported in Files and does not fail the batch.
	Extract(ctx context.Context, files []ocr.Input, lang string) (*ExtractResult, error)

	// Export writes candidates into the destination workbook and returns it.
	Export(ctx context.Context, candidates []model.Candidate) ([]byte, error)
}

// TemplateSource locates the export template: a local file, else an object key,
// else none.
type TemplateSource struct {
	Path  string
	Key   string
	Store storage.Storage
}

// Load returns the template bytes, or nil when no template is configured.
func (t TemplateSource) Load(ctx context.Context) ([]byte, error) {
	switch {
	case t.Path != "":
		b, err := os.ReadFile(t.Path)
		if err != nil {
			return nil, fmt.Errorf("read template file: %w", err)
		}
		return b, nil
	case t.Key != "" && t.Store != nil:
		rc, _, err := t.Store.Get(ctx, t.Key)
		if err != nil {
			return nil, fmt.Errorf("fetch template %s: %w", t.Key, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", t.Key, err)
		}
		return b, nil
	default:
		return nil, nil
	}
}

type extractionService struct {
	extractor BatchExtractor
	template  TemplateSource
	metrics   *metrics.Ingest
	logger    *zap.Logger
}

// NewExtractionService constructs an ExtractionService.
func NewExtractionService(extractor BatchExtractor, template TemplateSource, m *metrics.Ingest, logger *zap.Logger) ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &extractionService{extractor: extractor, template: template, metrics: m, logger: logger}
}

func (s *extractionService) Extract(ctx context.Context, files []ocr.Input, lang string) (*ExtractResult, error) {
	ctx, span := tracer.Start(ctx, "ExtractionService.Extract")
	defer span.End()

	if len(files) == 0 {
		return nil, ErrFilesRequired
	}
	span.SetAttributes(attribute.Int("ocr.files", len(files)), attribute.String("ocr.lang", lang))

	results := s.extractor.ExtractBatch(ctx, files, lang)

	out := &ExtractResult{Data: []model.Candidate{}, Files: results}
	failed := 0
	for _, r := range results {
		if r.Status != ocr.StatusOK {
			failed++
			continue
		}
		out.Data = append(out.Data, r.Candidates...)
	}

	s.metrics.AddRecords("ocr", len(out.Data))
	s.logger.Info("ocr batch extracted",
		zap.Int("files", len(files)),
		zap.Int("failed", failed),
		zap.Int("candidates", len(out.Data)),
	)
	return out, nil
}

func (s *extractionService) Export(ctx context.Context, candidates []model.Candidate) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "ExtractionService.Export")
	defer span.End()

	tmpl, err := s.template.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows := make([]export.Row, len(candidates))
	for i, c := range candidates {
		rows[i] = export.FromCandidate(c)
	}

	out, err := export.NewProjector(tmpl).Project(rows)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("project rows: %w", err)
	}
	return out, nil
}
