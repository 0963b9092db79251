package repository

import (
	"context"
	"errors"

	"tariffapi/internal/model"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("tariff record not found")
	// ErrForbidden is returned when a non-admin requester does not own the record.
	ErrForbidden = errors.New("record belongs to another uploader")
)

// TariffRepository is the append-only, ownership-aware tariff store.
// Implementations serialize writes; reads may run concurrently.
type TariffRepository interface {
	// Append assigns a fresh id to every record, persists them in order and returns
	// the ids. Either all records are stored or none.
	Append(ctx context.Context, records []model.TariffRecord) ([]string, error)

	// ListAll returns every record in insertion order.
	ListAll(ctx context.Context) ([]model.TariffRecord, error)

	// ListByOwner returns the records whose uploader equals owner, in insertion order.
	ListByOwner(ctx context.Context, owner string) ([]model.TariffRecord, error)

	// FindByID returns a record or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.TariffRecord, error)

	// Delete removes a record. Unknown ids yield ErrNotFound before any ownership
	// check; a non-admin requester other than the uploader yields ErrForbidden.
	Delete(ctx context.Context, id, requester string, admin bool) error
}

// CanDelete reports whether requester may remove a record uploaded by owner.
func CanDelete(owner, requester string, admin bool) bool {
	return admin || (requester != "" && owner == requester)
}
