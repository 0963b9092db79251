package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tariffapi/internal/model"
	"tariffapi/internal/repository"
)

// TariffPostgres is a PostgreSQL implementation of repository.TariffRepository.
// Insertion order is the BIGSERIAL seq column.
type TariffPostgres struct {
	db    *sql.DB
	newID func() string
}

// NewTariffPostgres creates a new TariffPostgres repository.
func NewTariffPostgres(db *sql.DB) *TariffPostgres {
	return &TariffPostgres{db: db, newID: uuid.NewString}
}

var _ repository.TariffRepository = (*TariffPostgres)(nil)

const selectColumns = `id, route, origin, destination, price, discounted, km, unit, meta, uploaded_by, uploaded_at`

// Append inserts all records inside one transaction.
func (r *TariffPostgres) Append(ctx context.Context, records []model.TariffRecord) (ids []string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `
		INSERT INTO tariffs (id, route, origin, destination, price, discounted, km, unit, meta, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	ids = make([]string, 0, len(records))
	for _, rec := range records {
		meta, err := encodeMeta(rec.Meta)
		if err != nil {
			return nil, err
		}
		id := r.newID()
		if _, err := tx.ExecContext(ctx, q,
			id,
			rec.Route,
			rec.Origin,
			rec.Destination,
			nullablePrice(rec.Price),
			rec.Discounted,
			rec.Km,
			rec.Unit,
			meta,
			rec.UploadedBy,
			rec.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("insert tariff: %w", err)
		}
		ids = append(ids, id)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListAll returns every record in insertion order.
func (r *TariffPostgres) ListAll(ctx context.Context) ([]model.TariffRecord, error) {
	q := `SELECT ` + selectColumns + ` FROM tariffs ORDER BY seq`
	return r.query(ctx, q)
}

// ListByOwner returns the records uploaded by owner in insertion order.
func (r *TariffPostgres) ListByOwner(ctx context.Context, owner string) ([]model.TariffRecord, error) {
	q := `SELECT ` + selectColumns + ` FROM tariffs WHERE uploaded_by = $1 ORDER BY seq`
	return r.query(ctx, q, owner)
}

// FindByID fetches a single record.
func (r *TariffPostgres) FindByID(ctx context.Context, id string) (*model.TariffRecord, error) {
	q := `SELECT ` + selectColumns + ` FROM tariffs WHERE id = $1`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete locks the row, checks ownership and removes it.
func (r *TariffPostgres) Delete(ctx context.Context, id, requester string, admin bool) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT uploaded_by FROM tariffs WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !repository.CanDelete(owner, requester, admin) {
		return repository.ErrForbidden
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM tariffs WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *TariffPostgres) query(ctx context.Context, q string, args ...any) ([]model.TariffRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TariffRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*model.TariffRecord, error) {
	var (
		rec   model.TariffRecord
		price sql.NullFloat64
		meta  []byte
	)
	if err := s.Scan(
		&rec.ID,
		&rec.Route,
		&rec.Origin,
		&rec.Destination,
		&price,
		&rec.Discounted,
		&rec.Km,
		&rec.Unit,
		&meta,
		&rec.UploadedBy,
		&rec.UploadedAt,
	); err != nil {
		return nil, err
	}
	if price.Valid {
		p := price.Float64
		rec.Price = &p
	}
	rec.Meta = map[string]any{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.Meta); err != nil {
			return nil, fmt.Errorf("decode meta of %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

func encodeMeta(meta map[string]any) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	return b, nil
}

func nullablePrice(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
