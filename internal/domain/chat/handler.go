package chat

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carechat/carechat/internal/domain/reminder"
	"github.com/carechat/carechat/internal/platform/auth"
)

type Handler struct {
	svc    *Service
	queue  *reminder.DeliveryQueue
	logger zerolog.Logger
}

func NewHandler(svc *Service, queue *reminder.DeliveryQueue, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, queue: queue, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/chat", h.Chat, auth.RequireRole(auth.RolePatient))
	api.GET("/chat/reminders", h.Reminders, auth.RequireRole(auth.RolePatient))
}

type chatRequest struct {
	UserMessage string `json:"user_message"`
}

func (h *Handler) Chat(c echo.Context) error {
	patientID, ok := auth.CurrentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not authenticate user")
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reply, err := h.svc.HandleTurn(c.Request().Context(), patientID, req.UserMessage)
	if err != nil {
		h.logger.Error().Err(err).Msg("error during chatbot response")
		return echo.NewHTTPError(http.StatusInternalServerError, respDialogueFailure)
	}
	return c.JSON(http.StatusOK, reply)
}

// Reminders drains the due-medication queue for the polling chat client.
func (h *Handler) Reminders(c echo.Context) error {
	reminders := h.queue.DrainAll()
	if reminders == nil {
		reminders = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"reminders": reminders})
}
