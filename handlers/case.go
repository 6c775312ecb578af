package handlers

import (
	"net/http"

	"mediation_flow_go/middleware"
	"mediation_flow_go/services"

	"github.com/labstack/echo/v4"
)

// CreateCaseHandler opens a new case
func (h *Handler) CreateCaseHandler(c echo.Context) error {
	var req services.CreateCaseInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, services.NewValidationError("Invalid request body"))
	}

	created, err := h.svc.Registry.CreateCase(c.Request().Context(), req, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusCreated, created)
}

// SearchCasesHandler lists live cases matching the query parameters
func (h *Handler) SearchCasesHandler(c echo.Context) error {
	var search services.CaseSearch
	if err := c.Bind(&search); err != nil {
		return respondError(c, services.NewValidationError("Invalid query parameters"))
	}

	result, err := h.svc.Registry.SearchCases(c.Request().Context(), search)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, result)
}

func (h *Handler) GetCaseHandler(c echo.Context) error {
	kase, err := h.svc.Registry.GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, kase)
}

func (h *Handler) DeleteCaseHandler(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.Registry.SoftDeleteCase(c.Request().Context(), id, middleware.ActorID(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"id": id})
}

// UpdateCaseStatusHandler moves a case to a new status
func (h *Handler) UpdateCaseStatusHandler(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, services.NewValidationError("Invalid request body"))
	}

	updated, err := h.svc.Lifecycle.UpdateCaseStatus(c.Request().Context(), c.Param("id"), req.Status, req.Notes, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, updated)
}

// SettleCaseHandler records a settlement
func (h *Handler) SettleCaseHandler(c echo.Context) error {
	var req services.SettlementInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, services.NewValidationError("Invalid request body"))
	}

	settled, err := h.svc.Lifecycle.SettleCase(c.Request().Context(), c.Param("id"), req, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, settled)
}

// AssignMediatorHandler assigns a mediator within the capacity limit
func (h *Handler) AssignMediatorHandler(c echo.Context) error {
	var req struct {
		MediatorID string `json:"mediator_id"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, services.NewValidationError("Invalid request body"))
	}

	updated, err := h.svc.Mediators.AssignMediator(c.Request().Context(), c.Param("id"), req.MediatorID, middleware.ActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, updated)
}

func (h *Handler) GetCaseTimelineHandler(c echo.Context) error {
	timeline, err := h.svc.Timeline.GetCaseTimeline(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, timeline)
}

func (h *Handler) GetCaseEventsHandler(c echo.Context) error {
	events, err := h.svc.Timeline.GetCaseEvents(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, events)
}

func (h *Handler) GetRelatedCasesHandler(c echo.Context) error {
	related, err := h.svc.Registry.GetRelatedCases(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, related)
}
