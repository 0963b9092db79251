package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"tariffapi/internal/http/middleware"
	"tariffapi/internal/service"
)

// sourceFields are the multipart field names accepted for a spreadsheet.
var sourceFields = []string{"file", "excel", "xlsx"}

func readSourceFile(c *fiber.Ctx) (service.SourceFile, error) {
	var fh *multipart.FileHeader
	for _, field := range sourceFields {
		if f, err := c.FormFile(field); err == nil {
			fh = f
			break
		}
	}
	if fh == nil {
		return service.SourceFile{}, service.ErrFileRequired
	}

	data, err := readFileHeader(fh)
	if err != nil {
		return service.SourceFile{}, err
	}
	return service.SourceFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// PreviewTariffs godoc
// @Summary      Preview a tariff spreadsheet
// @Description  Normalizes the first sheet of an xlsx file without storing it.
// @Tags         tariffs
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Spreadsheet (field may also be excel or xlsx)"
// @Param        username  formData  string  false  "Uploader identity"
// @Success      200  {object}  service.PreviewResult
// @Failure      400  {object}  errorPayload
// @Router       /api/tariffs/preview [post]
func PreviewTariffs(svc service.TariffService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		src, err := readSourceFile(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.Preview(c.UserContext(), src, middleware.CallerFromCtx(c).Identity)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadTariffs godoc
// @Summary      Upload a tariff spreadsheet
// @Description  Normalizes and appends every usable row to the tariff store.
// @Tags         tariffs
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Spreadsheet (field may also be excel or xlsx)"
// @Param        username  formData  string  false  "Uploader identity"
// @Param        X-User    header    string  false  "Uploader identity"
// @Success      200  {object}  service.UploadResult
// @Failure      400  {object}  errorPayload
// @Router       /api/tariffs/upload [post]
func UploadTariffs(svc service.TariffService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		src, err := readSourceFile(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.Upload(c.UserContext(), src, middleware.CallerFromCtx(c).Identity)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListUploads godoc
// @Summary      List uploaded tariff records
// @Description  Admins get every record; other callers get their own, identified by ?user= or X-User.
// @Tags         uploads
// @Produce      json
// @Param        user         query   string  false  "Uploader identity"
// @Param        X-User       header  string  false  "Uploader identity"
// @Param        X-Admin-Key  header  string  false  "Admin shared secret"
// @Success      200  {array}   model.TariffRecord
// @Failure      401  {object}  errorPayload
// @Router       /api/uploads [get]
func ListUploads(svc service.TariffService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := svc.List(c.UserContext(), middleware.CallerFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(records)
	}
}

// DeleteUpload godoc
// @Summary      Delete an uploaded tariff record
// @Tags         uploads
// @Produce      json
// @Param        id           path    string  true   "Record id"
// @Param        X-User       header  string  false  "Uploader identity"
// @Param        X-Admin-Key  header  string  false  "Admin shared secret"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  errorPayload
// @Failure      403  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /api/uploads/{id} [delete]
func DeleteUpload(svc service.TariffService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(c.Params("id"))
		if err := svc.Delete(c.UserContext(), id, middleware.CallerFromCtx(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "deleted": id})
	}
}
