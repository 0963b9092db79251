// Package fitz implements ocr.Rasterizer with MuPDF.
package fitz

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is used when no resolution is configured.
const DefaultDPI = 300

// Rasterizer renders PDF pages to PNG.
type Rasterizer struct {
	dpi float64
}

// NewRasterizer returns a rasterizer rendering at dpi.
func NewRasterizer(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{dpi: float64(dpi)}
}

// Rasterize returns one PNG per page.
func (r *Rasterizer) Rasterize(ctx context.Context, pdf []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImagePNG(i, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}
