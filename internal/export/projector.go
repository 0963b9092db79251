// Package export writes tariff rows into fixed columns of a spreadsheet template.
package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"tariffapi/internal/ingest"
	"tariffapi/internal/model"
)

// DownloadName is the attachment name of a generated workbook.
const DownloadName = "Fiyat_Talep_Sonuclu.xlsx"

// ContentType is the MIME type of xlsx documents.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	colOrigin      = "B"
	colDestination = "C"
	colPrice       = "H"
	colTimestamp   = "I"
)

// Row is one line of the destination workbook.
type Row struct {
	Origin      string
	Destination string
	Price       *float64
	Timestamp   string
}

// FromCandidate converts an OCR candidate into a row.
func FromCandidate(c model.Candidate) Row {
	return Row{
		Origin:      c.Origin,
		Destination: c.Destination,
		Price:       ingest.ParsePrice(c.Price),
		Timestamp:   c.ExtractedAt,
	}
}

// FromRecord converts a stored record into a row.
func FromRecord(r model.TariffRecord) Row {
	row := Row{
		Origin:      r.Origin,
		Destination: r.Destination,
		Price:       r.Price,
	}
	if row.Origin == "" && row.Destination == "" {
		row.Origin = r.Route
	}
	if !r.UploadedAt.IsZero() {
		row.Timestamp = r.UploadedAt.Format(model.CandidateTimeLayout)
	}
	return row
}

// Projector appends rows after the last used row of a template workbook.
type Projector struct {
	template []byte
}

// NewProjector returns a projector over template. A nil template produces a
// fresh workbook with a header row.
func NewProjector(template []byte) *Projector {
	return &Projector{template: template}
}

// Project writes rows and returns the serialized workbook.
func (p *Projector) Project(rows []Row) ([]byte, error) {
	f, err := p.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	used, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read template sheet: %w", err)
	}

	next := len(used) + 1
	for _, r := range rows {
		if err := writeRow(f, sheet, next, r); err != nil {
			return nil, err
		}
		next++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Projector) open() (*excelize.File, error) {
	if p.template == nil {
		return newWorkbook()
	}
	f, err := excelize.OpenReader(bytes.NewReader(p.template))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	return f, nil
}

func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	headers := map[string]string{
		colOrigin:      "Kalkış",
		colDestination: "Varış",
		colPrice:       "Fiyat",
		colTimestamp:   "Tarih",
	}
	for col, title := range headers {
		if err := f.SetCellStr(sheet, col+"1", title); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, n int, r Row) error {
	cell := func(col string) string { return fmt.Sprintf("%s%d", col, n) }

	if err := f.SetCellStr(sheet, cell(colOrigin), r.Origin); err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, cell(colDestination), r.Destination); err != nil {
		return err
	}
	if v, ok := priceCell(r.Price); ok {
		if err := f.SetCellValue(sheet, cell(colPrice), v); err != nil {
			return err
		}
	}
	return f.SetCellStr(sheet, cell(colTimestamp), r.Timestamp)
}

// priceCell truncates p to an integer; prices outside int64 are left blank.
func priceCell(p *float64) (int64, bool) {
	if p == nil || math.IsNaN(*p) || *p < 0 || *p >= math.MaxInt64 {
		return 0, false
	}
	return int64(*p), true
}
