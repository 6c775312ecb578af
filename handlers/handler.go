// Package handlers exposes the mediation case services over HTTP.
package handlers

import (
	"mediation_flow_go/config"
	"mediation_flow_go/middleware"
	"mediation_flow_go/models"
	"mediation_flow_go/services"

	"github.com/labstack/echo/v4"
)

// Handler serves the /api routes
type Handler struct {
	svc *services.Services
	cfg *config.Config
	now services.Clock
}

func New(svc *services.Services, cfg *config.Config, now services.Clock) *Handler {
	if now == nil {
		now = services.SystemClock
	}
	return &Handler{svc: svc, cfg: cfg, now: now}
}

// Register mounts every route under /api. Mutating routes additionally pass
// through writeLimit when it is non-nil.
func (h *Handler) Register(e *echo.Echo, writeLimit echo.MiddlewareFunc) {
	var writes []echo.MiddlewareFunc
	if writeLimit != nil {
		writes = append(writes, writeLimit)
	}
	adminOnly := append(append([]echo.MiddlewareFunc{}, writes...), middleware.RequireRole(models.PersonRoleAdmin))
	staffOnly := append(append([]echo.MiddlewareFunc{}, writes...), middleware.RequireRole(models.PersonRoleOfficer, models.PersonRoleAdmin))

	api := e.Group("/api")
	api.Use(middleware.RequireActor())
	{
		cases := api.Group("/cases")
		cases.POST("", h.CreateCaseHandler, writes...)
		cases.GET("", h.SearchCasesHandler)
		cases.GET("/:id", h.GetCaseHandler)
		cases.DELETE("/:id", h.DeleteCaseHandler, adminOnly...)
		cases.PUT("/:id/status", h.UpdateCaseStatusHandler, writes...)
		cases.POST("/:id/settlement", h.SettleCaseHandler, writes...)
		cases.PUT("/:id/mediator", h.AssignMediatorHandler, staffOnly...)
		cases.GET("/:id/timeline", h.GetCaseTimelineHandler)
		cases.GET("/:id/events", h.GetCaseEventsHandler)
		cases.GET("/:id/related", h.GetRelatedCasesHandler)
		cases.GET("/:id/sessions", h.GetCaseSessionsHandler)

		sessions := api.Group("/sessions")
		sessions.POST("", h.CreateSessionHandler, writes...)
		sessions.GET("/:id", h.GetSessionHandler)
		sessions.PUT("/:id/outcome", h.UpdateSessionOutcomeHandler, writes...)
		sessions.DELETE("/:id", h.DeleteSessionHandler, adminOnly...)

		// Static segment registered alongside :id; echo prefers the static match
		api.GET("/mediators/workload/export", h.ExportWorkloadsHandler, middleware.RequireRole(models.PersonRoleOfficer, models.PersonRoleAdmin))
		api.GET("/mediators/:id/workload", h.GetMediatorWorkloadHandler)

		api.GET("/follow-ups", h.ListDueFollowUpsHandler)

		api.GET("/notifications", h.ListNotificationsHandler)
		api.PUT("/notifications/:id/read", h.MarkNotificationReadHandler, writes...)
	}
}
