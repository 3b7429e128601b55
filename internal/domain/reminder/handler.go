package reminder

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carechat/carechat/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.PUT("/prescriptions/:id/reminders/activate", h.Activate, auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
	api.GET("/prescriptions/:id/reminders", h.List, auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
}

func (h *Handler) Activate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	reminders, err := h.svc.ActivateForPrescription(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrPrescriptionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, ErrPrescriptionNotFound.Error())
		case errors.Is(err, ErrNoReminders):
			return echo.NewHTTPError(http.StatusNotFound, ErrNoReminders.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "error activating reminders")
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "reminders activated",
		"reminders": reminders,
	})
}

func (h *Handler) List(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	reminders, err := h.svc.ListByPrescription(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reminders)
}
