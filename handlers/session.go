package handlers

import (
	"net/http"

	"mediation_flow_go/middleware"
	"mediation_flow_go/services"

	"github.com/labstack/echo/v4"
)

// CreateSessionHandler records a mediation session against a case
func (h *Handler) CreateSessionHandler(c echo.Context) error {
	var req services.CreateSessionInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, services.NewValidationError("Invalid request body"))
	}

	session, err := h.svc.Sessions.CreateSession(c.Request().Context(), req, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusCreated, session)
}

func (h *Handler) GetSessionHandler(c echo.Context) error {
	session, err := h.svc.Sessions.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, session)
}

// UpdateSessionOutcomeHandler replaces agreements and schedules the next session
func (h *Handler) UpdateSessionOutcomeHandler(c echo.Context) error {
	var req services.SessionOutcomeInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, services.NewValidationError("Invalid request body"))
	}

	session, err := h.svc.Sessions.UpdateSessionOutcome(c.Request().Context(), c.Param("id"), req, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, session)
}

func (h *Handler) DeleteSessionHandler(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.Sessions.SoftDeleteSession(c.Request().Context(), id, middleware.ActorID(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"id": id})
}

// GetCaseSessionsHandler lists a case's sessions, optionally by ?session_type=
func (h *Handler) GetCaseSessionsHandler(c echo.Context) error {
	sessions, err := h.svc.Sessions.GetCaseSessions(c.Request().Context(), c.Param("id"), c.QueryParam("session_type"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, sessions)
}
