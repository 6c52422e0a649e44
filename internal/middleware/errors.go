package middleware

import (
	"errors"
	"net/http"
	"strings"

	"invoicedash/internal/common"
	"invoicedash/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HTTPErrorHandler renders errors returned by handlers and middleware.
// Form validation failures become 400 with per-field details, echo errors keep
// their status, anything else is logged and hidden behind a 500.
func HTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			verr    *validation.Error
			echoErr *echo.HTTPError
			status  int
			body    any
		)

		switch {
		case errors.As(err, &verr):
			status = http.StatusBadRequest
			body = common.CreateErrorResponse("VALIDATION_ERROR", "Validation failed", verr.Details())

		case errors.As(err, &echoErr):
			status = echoErr.Code
			message, ok := echoErr.Message.(string)
			if !ok {
				message = http.StatusText(status)
			}
			body = common.CreateErrorResponse(statusCode(status), message, nil)

		default:
			status = http.StatusInternalServerError
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled request error")
			body = common.CreateErrorResponse("SERVER_ERROR", http.StatusText(status), nil)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}

// statusCode turns "Not Found" into NOT_FOUND
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
