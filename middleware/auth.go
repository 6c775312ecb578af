package middleware

import (
	"net/http"
	"strings"

	"mediation_flow_go/models"

	"github.com/labstack/echo/v4"
)

const (
	// HeaderActorID carries the id of the person performing the request
	HeaderActorID = "X-Actor-ID"
	// HeaderActorRole carries that person's role
	HeaderActorRole = "X-Actor-Role"
	// ContextKeyActor is the context key for the resolved actor
	ContextKeyActor = "actor"
)

// Actor is the caller on whose behalf an operation runs
type Actor struct {
	ID   string
	Role string
}

var knownRoles = map[string]bool{
	models.PersonRoleParty:    true,
	models.PersonRoleMediator: true,
	models.PersonRoleOfficer:  true,
	models.PersonRoleAdmin:    true,
}

// RequireActor is middleware that requires the actor headers set by the upstream gateway
func RequireActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			if id == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing "+HeaderActorID+" header")
			}

			role := strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderActorRole)))
			if !knownRoles[role] {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or unknown "+HeaderActorRole+" header")
			}

			c.Set(ContextKeyActor, &Actor{ID: id, Role: role})
			return next(c)
		}
	}
}

// RequireRole is middleware that requires specific roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := GetCurrentActor(c)
			if actor == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Actor not found")
			}

			// Check if actor has one of the required roles
			for _, role := range roles {
				if actor.Role == role {
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// GetCurrentActor retrieves the current actor from context
func GetCurrentActor(c echo.Context) *Actor {
	actor, ok := c.Get(ContextKeyActor).(*Actor)
	if !ok {
		return nil
	}
	return actor
}

// ActorID returns the current actor's id, or "" outside RequireActor
func ActorID(c echo.Context) string {
	if actor := GetCurrentActor(c); actor != nil {
		return actor.ID
	}
	return ""
}
