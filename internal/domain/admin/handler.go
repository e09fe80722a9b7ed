package admin

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

// RegisterRoutes mounts the auth and user routes. loginMW wraps only the
// login route (rate limiting).
func (h *Handler) RegisterRoutes(api *echo.Group, loginMW ...echo.MiddlewareFunc) {
	api.POST("/login", h.Login, loginMW...)
	api.POST("/register", h.Register)
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
}

func (h *Handler) Register(c echo.Context) error {
	var cred Credentials
	if err := validate.Bind(c, &cred); err != nil {
		return apperr.HTTP(err)
	}
	user, err := h.svc.Register(c.Request().Context(), cred)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c echo.Context) error {
	var cred Credentials
	if err := validate.Bind(c, &cred); err != nil {
		return apperr.HTTP(err)
	}
	user, err := h.svc.Login(c.Request().Context(), cred)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, LoginResult{Success: true, User: user})
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := validate.PathID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, user)
}
