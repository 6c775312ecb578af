package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"mediation_flow_go/services"

	"github.com/labstack/echo/v4"
)

// Response is the JSON envelope every API route answers with
type Response struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Kind    string   `json:"kind"`
	Details []string `json:"details,omitempty"`
}

func respondOK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

// respondError writes a service error with the status its kind maps to.
// Internal causes are logged and never leak to the client.
func respondError(c echo.Context, err error) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		svcErr = services.NewInternalError("process request", err)
	}

	message := svcErr.Message
	if svcErr.Kind == services.KindInternal {
		log.Printf("[API] %s %s: %v", c.Request().Method, c.Path(), err)
		message = "Internal server error"
	}

	return c.JSON(svcErr.HTTPStatus(), Response{
		Error: &ErrorResponse{
			Message: message,
			Kind:    string(svcErr.Kind),
			Details: svcErr.Details,
		},
	})
}

// HTTPErrorHandler renders echo errors (routing, middleware, binding) in the envelope
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if writeErr := respondError(c, err); writeErr != nil {
			log.Printf("[API] Failed to write error response: %v", writeErr)
		}
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
	} else {
		log.Printf("[API] %s %s: %v", c.Request().Method, c.Path(), err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, Response{Error: &ErrorResponse{Message: message, Kind: errorKindForStatus(status)}})
	}
	if writeErr != nil {
		log.Printf("[API] Failed to write error response: %v", writeErr)
	}
}

func errorKindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(services.KindValidation)
	case http.StatusNotFound:
		return string(services.KindNotFound)
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return string(services.KindInternal)
	}
}
