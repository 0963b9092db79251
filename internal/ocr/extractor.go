package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tariffapi/internal/metrics"
	"tariffapi/internal/model"
)

// ErrEmptyFile is returned for zero-byte uploads.
var ErrEmptyFile = errors.New("empty file")

// Config tunes an Extractor.
type Config struct {
	Language    string
	Timeout     time.Duration
	// Concurrency bounds files in flight. A file that times out frees its slot while
	// the engine call may still run; tesseract.Recognizer bounds those separately.
	Concurrency int
}

// Extractor runs OCR over uploaded images and PDFs and pulls route/price
// candidates out of the recognized text.
type Extractor struct {
	recognizer Recognizer
	rasterizer Rasterizer
	cache      TextCache
	metrics    *metrics.Ingest
	logger     *zap.Logger
	cfg        Config
	now        func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithCache enables the recognized-text cache.
func WithCache(c TextCache) Option {
	return func(e *Extractor) { e.cache = c }
}

// WithMetrics records per-file outcomes.
func WithMetrics(m *metrics.Ingest) Option {
	return func(e *Extractor) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor creates an Extractor.
func NewExtractor(recognizer Recognizer, rasterizer Rasterizer, cfg Config, opts ...Option) *Extractor {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	e := &Extractor{
		recognizer: recognizer,
		rasterizer: rasterizer,
		logger:     zap.NewNop(),
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Text returns the recognized text of one file. PDF pages are joined with newlines.
func (e *Extractor) Text(ctx context.Context, in Input, lang string) (string, error) {
	if len(in.Data) == 0 {
		return "", ErrEmptyFile
	}
	if lang == "" {
		lang = e.cfg.Language
	}

	key := CacheKey(in.Data, lang)
	if e.cache != nil {
		text, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("ocr cache get failed", zap.String("filename", in.Filename), zap.Error(err))
		} else if ok {
			return text, nil
		}
	}

	var text string
	switch DetectKind(in.Filename, in.Data) {
	case KindPDF:
		pages, err := e.rasterizer.Rasterize(ctx, in.Data)
		if err != nil {
			return "", fmt.Errorf("rasterize: %w", err)
		}
		blocks := make([]string, 0, len(pages))
		for i, page := range pages {
			block, err := e.recognizer.Recognize(ctx, page, lang)
			if err != nil {
				return "", fmt.Errorf("page %d: %w", i+1, err)
			}
			blocks = append(blocks, block)
		}
		text = strings.Join(blocks, "\n")
	default:
		block, err := e.recognizer.Recognize(ctx, in.Data, lang)
		if err != nil {
			return "", err
		}
		text = block
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, text); err != nil {
			e.logger.Warn("ocr cache set failed", zap.String("filename", in.Filename), zap.Error(err))
		}
	}
	return text, nil
}

// Extract recognizes one file and returns the candidates found in it.
func (e *Extractor) Extract(ctx context.Context, in Input, lang string) ([]model.Candidate, error) {
	text, err := e.Text(ctx, in, lang)
	if err != nil {
		return nil, err
	}
	return ExtractCandidates(text, e.now()), nil
}

// ExtractBatch processes files concurrently, each under its own timeout.
// Results keep input order; a failing file only marks its own result.
func (e *Extractor) ExtractBatch(ctx context.Context, inputs []Input, lang string) []FileResult {
	results := make([]FileResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			results[i] = e.extractFile(ctx, in, lang)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Extractor) extractFile(ctx context.Context, in Input, lang string) FileResult {
	start := time.Now()
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	res := FileResult{Filename: in.Filename, Candidates: []model.Candidate{}}
	candidates, err := e.Extract(ctx, in, lang)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("timed out after %s", e.cfg.Timeout)
	case err != nil:
		res.Status = StatusFailed
		res.Error = err.Error()
	default:
		res.Status = StatusOK
		res.Candidates = candidates
	}

	if err != nil {
		e.logger.Warn("ocr file failed",
			zap.String("filename", in.Filename),
			zap.Error(err),
		)
	}
	e.metrics.ObserveOCRFile(res.Status, time.Since(start))
	return res
}
