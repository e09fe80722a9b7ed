package bulkimport

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Form fields accepted for the uploaded file, in order of preference.
var uploadFields = []string{"csvFile", "file"}

type Handler struct {
	importer  *Importer
	uploadDir string
	maxBytes  int64
	logger    zerolog.Logger
}

func NewHandler(importer *Importer, uploadDir string, maxBytes int64, logger zerolog.Logger) *Handler {
	return &Handler{importer: importer, uploadDir: uploadDir, maxBytes: maxBytes, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/upload-csv", h.Upload)
}

// Upload stores the multipart file in the upload directory, imports it and
// removes it again whatever the outcome.
func (h *Handler) Upload(c echo.Context) error {
	req := c.Request()
	if req.ContentLength > h.maxBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxBytes)

	fh, err := h.formFile(c)
	if err != nil {
		return err
	}
	defer func() {
		if req.MultipartForm != nil {
			_ = req.MultipartForm.RemoveAll()
		}
	}()

	path, err := h.saveTemp(fh)
	if path != "" {
		defer func() {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				h.logger.Warn().Err(rmErr).Str("path", path).Msg("remove upload")
			}
		}()
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}

	res, err := h.importer.ImportFile(req.Context(), path)
	switch {
	case errors.Is(err, ErrMalformed):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "import failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) formFile(c echo.Context) (*multipart.FileHeader, error) {
	for _, field := range uploadFields {
		fh, err := c.FormFile(field)
		if err == nil {
			return fh, nil
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form").SetInternal(err)
		}
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, "file is required")
}

// saveTemp copies the upload into uploadDir. The returned path is set
// whenever a file was created, even on error.
func (h *Handler) saveTemp(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.uploadDir, "upload-*.csv")
	if err != nil {
		return "", err
	}
	path := dst.Name()
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return path, err
	}
	return path, dst.Close()
}
