package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActorContext(id, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id != "" {
		req.Header.Set(HeaderActorID, id)
	}
	if role != "" {
		req.Header.Set(HeaderActorRole, role)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireActor(t *testing.T) {
	handler := RequireActor()(func(c echo.Context) error {
		actor := GetCurrentActor(c)
		return c.String(http.StatusOK, actor.ID+"/"+actor.Role)
	})

	t.Run("Valid headers", func(t *testing.T) {
		c, rec := newActorContext("officer-1", "Officer")
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "officer-1/officer", rec.Body.String())
	})

	t.Run("Missing id", func(t *testing.T) {
		c, _ := newActorContext("", "officer")
		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("Unknown role", func(t *testing.T) {
		c, _ := newActorContext("x", "judge")
		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestRequireRole(t *testing.T) {
	handler := RequireActor()(RequireRole("admin", "officer")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}))

	t.Run("Allowed role", func(t *testing.T) {
		c, rec := newActorContext("admin-1", "admin")
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Forbidden role", func(t *testing.T) {
		c, _ := newActorContext("party-1", "party")
		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("No actor in context", func(t *testing.T) {
		c, _ := newActorContext("", "")
		err := RequireRole("admin")(func(c echo.Context) error { return nil })(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
		assert.Equal(t, "", ActorID(c))
	})
}
