package scheduling

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
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments", h.CreateAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	appts, err := h.svc.ListAppointments(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := validate.Bind(c, &a); err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.CreateAppointment(c.Request().Context(), &a); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	var a Appointment
	if err := validate.Bind(c, &a); err != nil {
		return apperr.HTTP(err)
	}
	a.ID = id
	if err := h.svc.UpdateAppointment(c.Request().Context(), &a); err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
