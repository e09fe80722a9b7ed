package reporting

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/pkg/jsontable"
)

type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/queries", h.ListReports)
	api.GET("/queries/:id", h.RunReport)
	api.POST("/tabulate", h.Tabulate)
}

func (h *Handler) ListReports(c echo.Context) error {
	return c.JSON(http.StatusOK, Catalog)
}

// RunReport answers with the rows as JSON, or as an HTML table when
// format=html.
func (h *Handler) RunReport(c echo.Context) error {
	report := FindReport(c.Param("id"))
	if report == nil {
		return apperr.HTTP(apperr.NotFound("report not found"))
	}

	args, err := report.Args(c.QueryParam)
	if err != nil {
		return apperr.HTTP(err)
	}

	table, err := h.runner.Run(c.Request().Context(), report.SQL, args...)
	if err != nil {
		return apperr.HTTP(err)
	}

	if c.QueryParam("format") == "html" {
		raw, err := json.Marshal(table)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.HTML(http.StatusOK, jsontable.Convert(raw))
	}
	return c.JSON(http.StatusOK, table)
}

// Tabulate renders the JSON request body as an HTML table.
func (h *Handler) Tabulate(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if errors.Is(err, apperr.ErrBodyTooLarge) {
		return apperr.ErrBodyTooLarge
	}
	if err != nil {
		return apperr.HTTP(apperr.BadRequest("invalid request body"))
	}
	return c.HTML(http.StatusOK, jsontable.Convert(raw))
}
