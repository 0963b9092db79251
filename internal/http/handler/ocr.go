package handler

import (
	"github.com/gofiber/fiber/v2"

	"tariffapi/internal/export"
	"tariffapi/internal/model"
	"tariffapi/internal/ocr"
	"tariffapi/internal/service"
)

// generateRequest is the body of the export endpoint; Data is typically the
// data array returned by the OCR upload.
type generateRequest struct {
	Data []model.Candidate `json:"data"`
}

// ExtractOCR godoc
// @Summary      Extract route and price candidates from scans
// @Description  Runs OCR over every uploaded image or PDF. A failing file is reported per file.
// @Tags         ocr
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file    true   "Images or PDFs (repeatable)"
// @Param        lang   formData  string  false  "Tesseract language, default tur"
// @Success      200  {object}  service.ExtractResult
// @Failure      400  {object}  errorPayload
// @Failure      429  {object}  errorPayload
// @Router       /api/ocr/upload [post]
func ExtractOCR(svc service.ExtractionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var inputs []ocr.Input
		if form, err := c.MultipartForm(); err == nil {
			for _, fh := range form.File["files"] {
				data, err := readFileHeader(fh)
				if err != nil {
					return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
				}
				inputs = append(inputs, ocr.Input{Filename: fh.Filename, Data: data})
			}
		}

		res, err := svc.Extract(c.UserContext(), inputs, c.FormValue("lang"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GenerateExport godoc
// @Summary      Write candidates into the destination workbook
// @Tags         ocr
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        body  body  generateRequest  true  "Candidates to export"
// @Success      200  {file}    binary
// @Failure      400  {object}  errorPayload
// @Router       /api/ocr/generate [post]
func GenerateExport(svc service.ExtractionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req generateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be JSON with a data array")
		}

		out, err := svc.Export(c.UserContext(), req.Data)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Attachment(export.DownloadName)
		c.Set(fiber.HeaderContentType, export.ContentType)
		return c.Send(out)
	}
}
