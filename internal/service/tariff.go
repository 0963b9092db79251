package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"tariffapi/internal/auth"
	"tariffapi/internal/ingest"
	"tariffapi/internal/metrics"
	"tariffapi/internal/model"
	"tariffapi/internal/repository"
	"tariffapi/internal/storage"
)

var tracer = otel.Tracer("tariffapi/internal/service")

// SourceFile is an uploaded spreadsheet held in memory.
type SourceFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PreviewResult carries normalized records that were not persisted.
type PreviewResult struct {
	Data  []model.TariffRecord `json:"data"`
	Count int                  `json:"count"`
}

// UploadResult reports a persisted upload.
type UploadResult struct {
	OK       bool     `json:"ok"`
	Inserted int      `json:"inserted"`
	IDs      []string `json:"ids"`
}

// TariffService defines the spreadsheet ingestion and record management use cases.
type TariffService interface {
	// Preview parses and normalizes a spreadsheet without storing anything.
	Preview(ctx context.Context, src SourceFile, uploader string) (*PreviewResult, error)

	// Upload normalizes a spreadsheet, archives the source when object storage is
	// configured and appends the records. The archive is removed if the append fails.
	Upload(ctx context.Context, src SourceFile, uploader string) (*UploadResult, error)

	// List returns every record to an admin and the caller's own records otherwise.
	List(ctx context.Context, caller auth.Caller) ([]model.TariffRecord, error)

	// Delete removes a record owned by the caller, or any record for an admin.
	Delete(ctx context.Context, id string, caller auth.Caller) error
}

type tariffService struct {
	repo       repository.TariffRepository
	store      storage.Storage
	normalizer *ingest.Normalizer
	metrics    *metrics.Ingest
	logger     *zap.Logger
}

// NewTariffService constructs a TariffService. store and m may be nil.
func NewTariffService(
	repo repository.TariffRepository,
	store storage.Storage,
	normalizer *ingest.Normalizer,
	m *metrics.Ingest,
	logger *zap.Logger,
) TariffService {
	if normalizer == nil {
		normalizer = ingest.NewNormalizer(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tariffService{repo: repo, store: store, normalizer: normalizer, metrics: m, logger: logger}
}

func (s *tariffService) parse(src SourceFile, uploader string) ([]model.TariffRecord, error) {
	if len(src.Data) == 0 {
		return nil, ErrFileRequired
	}
	rows, err := ingest.ReadWorkbook(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	records, err := s.normalizer.Normalize(rows, uploader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return records, nil
}

func (s *tariffService) Preview(ctx context.Context, src SourceFile, uploader string) (*PreviewResult, error) {
	_, span := tracer.Start(ctx, "TariffService.Preview")
	defer span.End()

	records, err := s.parse(src, uploaderOrAnonymous(uploader))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.AddRecords("preview", len(records))
	return &PreviewResult{Data: records, Count: len(records)}, nil
}

func (s *tariffService) Upload(ctx context.Context, src SourceFile, uploader string) (*UploadResult, error) {
	ctx, span := tracer.Start(ctx, "TariffService.Upload")
	defer span.End()

	uploader = uploaderOrAnonymous(uploader)
	records, err := s.parse(src, uploader)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("tariff.records", len(records)), attribute.String("tariff.uploader", uploader))

	var archived string
	if s.store != nil {
		archived, err = s.archive(ctx, src, uploader)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	ids, err := s.repo.Append(ctx, records)
	if err != nil {
		span.RecordError(err)
		if archived != "" {
			if delErr := s.store.Delete(ctx, archived); delErr != nil {
				return nil, fmt.Errorf("append records failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("append records failed: %w", err)
	}

	s.metrics.AddRecords("upload", len(ids))
	s.logger.Info("tariffs uploaded",
		zap.String("uploaded_by", uploader),
		zap.String("filename", src.Filename),
		zap.Int("inserted", len(ids)),
		zap.String("archive_key", archived),
	)
	return &UploadResult{OK: true, Inserted: len(ids), IDs: ids}, nil
}

func (s *tariffService) archive(ctx context.Context, src SourceFile, uploader string) (string, error) {
	ext := strings.ToLower(filepath.Ext(src.Filename))
	if ext == "" {
		ext = ".xlsx"
	}
	key := filepath.ToSlash(filepath.Join("sources", uuid.NewString()+ext))

	contentType := src.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := s.store.Put(ctx, key, bytes.NewReader(src.Data), storage.PutObjectOptions{
		Size:        int64(len(src.Data)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": src.Filename,
			"uploaded-by":       uploader,
		},
	})
	if err != nil {
		return "", fmt.Errorf("archive source: %w", err)
	}
	return info.Key, nil
}

func (s *tariffService) List(ctx context.Context, caller auth.Caller) ([]model.TariffRecord, error) {
	switch {
	case caller.Admin:
		return s.repo.ListAll(ctx)
	case !caller.Anonymous():
		return s.repo.ListByOwner(ctx, caller.Identity)
	default:
		return nil, ErrIdentityRequired
	}
}

func (s *tariffService) Delete(ctx context.Context, id string, caller auth.Caller) error {
	if strings.TrimSpace(id) == "" {
		return ErrIDRequired
	}

	// An unknown id is reported before a missing identity.
	if !caller.Admin && caller.Anonymous() {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return mapRepoError(err)
		}
		return ErrIdentityRequired
	}

	if err := s.repo.Delete(ctx, id, caller.Identity, caller.Admin); err != nil {
		return mapRepoError(err)
	}
	s.logger.Info("tariff deleted",
		zap.String("id", id),
		zap.String("requester", caller.Identity),
		zap.Bool("admin", caller.Admin),
	)
	return nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrRecordNotFound
	case errors.Is(err, repository.ErrForbidden):
		return ErrForbidden
	default:
		return err
	}
}

func uploaderOrAnonymous(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return model.AnonymousUploader
	}
	return u
}
