package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"mediation_flow_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) GetMediatorWorkloadHandler(c echo.Context) error {
	workload, err := h.svc.Mediators.GetMediatorWorkload(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, workload)
}

// ExportWorkloadsHandler downloads the workload of each ?mediator_id= as a spreadsheet.
// Ids may be repeated or comma separated.
func (h *Handler) ExportWorkloadsHandler(c echo.Context) error {
	var ids []string
	for _, raw := range c.QueryParams()["mediator_id"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	buf, err := h.svc.Mediators.ExportWorkloads(c.Request().Context(), ids)
	if err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("mediator-workload-%s.xlsx", h.now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListDueFollowUpsHandler lists settled cases with a pending follow-up on or before
// ?before= (defaults to the reminder lookahead from now)
func (h *Handler) ListDueFollowUpsHandler(c echo.Context) error {
	before := h.now().AddDate(0, 0, h.cfg.FollowUpLookaheadDays)
	if raw := c.QueryParam("before"); raw != "" {
		parsed, err := services.ParseDate(raw)
		if err != nil {
			return respondError(c, services.NewValidationError("Invalid before date (expected YYYY-MM-DD)"))
		}
		before = parsed
	}

	cases, err := h.svc.Lifecycle.ListDueFollowUps(c.Request().Context(), before)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, cases)
}
