package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tariffapi/internal/model"
)

var (
	// ErrNoDataRows means the table lacks a header row followed by at least one data row.
	ErrNoDataRows = errors.New("no data rows found or header row missing")
	// ErrNoUsableRows means no data row produced a route.
	ErrNoUsableRows = errors.New("no row yielded a route")
)

// Normalizer turns a header row plus data rows into canonical records.
type Normalizer struct {
	mapper *HeaderMapper
	now    func() time.Time
}

// NewNormalizer returns a Normalizer using mapper (default table when nil).
func NewNormalizer(mapper *HeaderMapper) *Normalizer {
	if mapper == nil {
		mapper = NewHeaderMapper(nil)
	}
	return &Normalizer{mapper: mapper, now: func() time.Time { return time.Now().UTC() }}
}

// Normalize maps rows[0] as the header and converts every following row.
// Blank rows and rows without a derivable route are skipped.
func (n *Normalizer) Normalize(rows [][]any, uploader string) ([]model.TariffRecord, error) {
	if len(rows) < 2 {
		return nil, ErrNoDataRows
	}
	tags := n.mapper.Map(rows[0])

	out := make([]model.TariffRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, ok := n.NormalizeRow(tags, row, uploader)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, ErrNoUsableRows
	}
	return out, nil
}

// NormalizeRow converts one row. ok is false when the row is blank or has no route.
func (n *Normalizer) NormalizeRow(tags []string, row []any, uploader string) (model.TariffRecord, bool) {
	if isBlankRow(row) {
		return model.TariffRecord{}, false
	}

	// Later columns overwrite earlier ones carrying the same tag.
	obj := make(map[string]any, len(row))
	for i, cell := range row {
		key := fmt.Sprintf("col%d", i)
		if i < len(tags) {
			key = tags[i]
		}
		obj[key] = cell
	}

	origin := strings.TrimSpace(CellString(obj[TagOrigin]))
	destination := strings.TrimSpace(CellString(obj[TagDestination]))
	route := strings.TrimSpace(CellString(obj[TagRoute]))
	if route == "" {
		if origin == "" || destination == "" {
			return model.TariffRecord{}, false
		}
		route = origin + " - " + destination
	}

	if uploader = strings.TrimSpace(uploader); uploader == "" {
		uploader = model.AnonymousUploader
	}

	meta := make(map[string]any)
	for k, v := range obj {
		if IsCanonical(k) {
			continue
		}
		meta[k] = v
	}

	return model.TariffRecord{
		Route:       route,
		Origin:      origin,
		Destination: destination,
		Price:       ParsePrice(obj[TagPrice]),
		Discounted:  CellString(obj[TagDiscounted]),
		Km:          CellString(obj[TagKm]),
		Unit:        CellString(obj[TagUnit]),
		Meta:        meta,
		UploadedBy:  uploader,
		UploadedAt:  n.now(),
	}, true
}

func isBlankRow(row []any) bool {
	for _, c := range row {
		switch v := c.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// CellString renders a cell value as text. Whole floats drop their fraction.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
