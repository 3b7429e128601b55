package scheduling

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carechat/carechat/internal/platform/auth"
	"github.com/carechat/carechat/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors/:id/slots", h.ListAvailableSlots)
	api.POST("/appointments", h.BookAppointment, auth.RequireRole(auth.RolePatient))

	doctor := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doctor.POST("/timeslots", h.CreateTimeSlot)
	doctor.DELETE("/timeslots/:id", h.DeleteTimeSlot)
	doctor.GET("/doctors/:id/appointments", h.ListDoctorAppointments)
	doctor.PATCH("/appointments/:id/inactive", h.MarkAppointmentInactive)
}

// -- Time Slot Handlers --

func (h *Handler) CreateTimeSlot(c echo.Context) error {
	var sl TimeSlot
	if err := c.Bind(&sl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateTimeSlot(c.Request().Context(), &sl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sl)
}

func (h *Handler) DeleteTimeSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteTimeSlot(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAvailableSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, slots)
}

// -- Appointment Handlers --

type bookRequest struct {
	DoctorID   uuid.UUID `json:"doctor_id"`
	TimeSlotID uuid.UUID `json:"time_slot_id"`
}

func (h *Handler) BookAppointment(c echo.Context) error {
	patientID, ok := auth.CurrentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil || req.TimeSlotID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id and time_slot_id are required")
	}

	appt, err := h.svc.BookAppointment(c.Request().Context(), patientID, req.DoctorID, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			return echo.NewHTTPError(http.StatusBadRequest, ErrSlotUnavailable.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "error booking appointment")
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) MarkAppointmentInactive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	doctorID, ok := auth.CurrentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	appt, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if appt.DoctorID != doctorID && auth.RoleFromContext(c.Request().Context()) != auth.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "appointment belongs to another doctor")
	}

	if err := h.svc.MarkAppointmentInactive(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"appointment_id": id.String(),
		"status":         "inactive",
	})
}

func (h *Handler) ListDoctorAppointments(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	active := c.QueryParam("status") != "inactive"
	sortOrder := c.QueryParam("sort_order")
	pg := pagination.FromContext(c)

	items, total, err := h.svc.ListDoctorAppointments(c.Request().Context(), doctorID, active,
		c.QueryParam("search"), sortOrder, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
