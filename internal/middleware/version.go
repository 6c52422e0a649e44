package middleware

import (
	"github.com/labstack/echo/v4"
)

// VersionHeaderName is set on every response
const VersionHeaderName = "X-App-Version"

// VersionHeader stamps responses with the running build version
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(VersionHeaderName, version)
			return next(c)
		}
	}
}
