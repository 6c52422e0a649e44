package middleware

import (
	"errors"

	"invoicedash/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionCookie carries the dashboard token for browser form posts
const SessionCookie = "session"

// DashboardClaims is the token payload accepted on /dashboard routes.
// The subject must be the user's UUID.
type DashboardClaims struct {
	jwt.RegisteredClaims
}

// Validate is called by the jwt parser after the registered claims pass
func (c *DashboardClaims) Validate() error {
	if _, err := uuid.Parse(c.Subject); err != nil {
		return errors.New("subject is not a user id")
	}
	return nil
}

// DashboardAuth validates HS256 tokens from the Authorization header or the
// session cookie and stores the user id on the request context.
func DashboardAuth(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		TokenLookup:   "header:Authorization:Bearer ,cookie:" + SessionCookie,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(DashboardClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*DashboardClaims)
			if !ok {
				return
			}
			ctx := common.WithUserID(c.Request().Context(), claims.Subject)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	})
}
