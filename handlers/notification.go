package handlers

import (
	"net/http"

	"mediation_flow_go/middleware"

	"github.com/labstack/echo/v4"
)

// ListNotificationsHandler lists the current actor's notifications, newest first
func (h *Handler) ListNotificationsHandler(c echo.Context) error {
	unreadOnly := c.QueryParam("unread") == "true"
	notifications, err := h.svc.Notifications.ListNotifications(c.Request().Context(), middleware.ActorID(c), unreadOnly)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, notifications)
}

func (h *Handler) MarkNotificationReadHandler(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.Notifications.MarkAsRead(c.Request().Context(), id, middleware.ActorID(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"id": id})
}
