// Package file stores tariff records as a JSON array in a single local file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"

	"tariffapi/internal/model"
	"tariffapi/internal/repository"
)

// TariffFile is a file-backed repository.TariffRepository. The whole collection
// is held in memory and every write replaces the file atomically.
type TariffFile struct {
	mu      sync.RWMutex
	path    string
	records []model.TariffRecord
	newID   func() string
}

var _ repository.TariffRepository = (*TariffFile)(nil)

// Open loads path, treating a missing file as an empty store.
// A file that exists but does not hold a JSON array is an error.
func Open(path string) (*TariffFile, error) {
	s := &TariffFile{path: path, newID: uuid.NewString}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("decode store file %s: %w", path, err)
	}
	return s, nil
}

// Append stores records with fresh ids.
func (s *TariffFile) Append(ctx context.Context, records []model.TariffRecord) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(records))
	next := slices.Grow(slices.Clone(s.records), len(records))
	for i, rec := range records {
		rec.ID = s.newID()
		ids[i] = rec.ID
		next = append(next, rec)
	}

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next
	return ids, nil
}

// ListAll returns every record.
func (s *TariffFile) ListAll(ctx context.Context) ([]model.TariffRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.TariffRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// ListByOwner returns the records uploaded by owner.
func (s *TariffFile) ListByOwner(ctx context.Context, owner string) ([]model.TariffRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TariffRecord, 0)
	for _, rec := range s.records {
		if rec.UploadedBy == owner {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FindByID returns the record with id.
func (s *TariffFile) FindByID(ctx context.Context, id string) (*model.TariffRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	rec := s.records[i]
	return &rec, nil
}

// Delete removes the record with id if requester may do so.
func (s *TariffFile) Delete(ctx context.Context, id, requester string, admin bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	if !repository.CanDelete(s.records[i].UploadedBy, requester, admin) {
		return repository.ErrForbidden
	}

	next := slices.Delete(slices.Clone(s.records), i, i+1)
	if err := s.persist(next); err != nil {
		return err
	}
	s.records = next
	return nil
}

func (s *TariffFile) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r model.TariffRecord) bool { return r.ID == id })
}

// persist writes records to a temp file in the same directory and renames it over path.
func (s *TariffFile) persist(records []model.TariffRecord) (err error) {
	if records == nil {
		records = []model.TariffRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync store: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
