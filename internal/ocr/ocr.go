package ocr

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"tariffapi/internal/model"
)

// DefaultLanguage is the tesseract language used when the caller gives none.
const DefaultLanguage = "tur"

// Recognizer turns a single raster image into plain text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, lang string) (string, error)
}

// Rasterizer renders every page of a PDF document to an image, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([][]byte, error)
}

// Kind is the document family of an uploaded file.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// DetectKind classifies a file by extension, falling back to content sniffing.
func DetectKind(filename string, data []byte) Kind {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return KindPDF
	}
	if http.DetectContentType(data) == "application/pdf" {
		return KindPDF
	}
	return KindImage
}

// Input is one uploaded file.
type Input struct {
	Filename string
	Data     []byte
}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// FileResult is the outcome for one file of a batch.
type FileResult struct {
	Filename   string            `json:"filename"`
	Status     string            `json:"status"`
	Candidates []model.Candidate `json:"candidates"`
	Error      string            `json:"error,omitempty"`
}
