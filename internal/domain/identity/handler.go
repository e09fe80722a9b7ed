package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/internal/platform/validate"
	"github.com/crudclinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.POST("/patients", h.CreatePatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)

	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.POST("/doctors", h.CreateDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor)
	api.DELETE("/doctors/:id", h.DeleteDoctor)
}

// -- Patient Handlers --

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.svc.ListPatients(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := validate.Bind(c, &p); err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	var p Patient
	if err := validate.Bind(c, &p); err != nil {
		return apperr.HTTP(err)
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Doctor Handlers --

func (h *Handler) ListDoctors(c echo.Context) error {
	doctors, err := h.svc.ListDoctors(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := validate.Bind(c, &d); err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	var d Doctor
	if err := validate.Bind(c, &d); err != nil {
		return apperr.HTTP(err)
	}
	d.ID = id
	if err := h.svc.UpdateDoctor(c.Request().Context(), &d); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
