package middleware

import (
	"errors"
	"net/http"

	"invoicedash/internal/common"
	"invoicedash/internal/validation"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger writes one structured line per request
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogLatency:   true,
		LogMethod:    true,
		LogRequestID: true,

		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			status := v.Status

			// The error handler has not run yet when a handler returns an error.
			if v.Error != nil {
				var verr *validation.Error
				var echoErr *echo.HTTPError
				switch {
				case errors.As(v.Error, &verr):
					status = http.StatusBadRequest
				case errors.As(v.Error, &echoErr):
					status = echoErr.Code
				default:
					status = http.StatusInternalServerError
				}
			}

			var e *zerolog.Event
			switch {
			case status >= 500:
				e = log.Error().Err(v.Error)
			case status >= 400:
				e = log.Warn()
			default:
				e = log.Info()
			}

			if v.RequestID != "" {
				e = e.Str("request_id", v.RequestID)
			}
			if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
				e = e.Str("user_id", userID)
			}

			e.Dur("latency", v.Latency).
				Int("status", status).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("ip", c.RealIP()).
				Msg("API")

			return nil
		},
	})
}
