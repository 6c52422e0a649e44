package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicedash/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, DashboardClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthServer() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(testLogger())
	g := e.Group("/dashboard", DashboardAuth(testSecret))
	g.GET("", func(c echo.Context) error {
		userID, _ := common.GetUserIDFromContext(c.Request().Context())
		return c.String(http.StatusOK, userID)
	})
	return e
}

func TestDashboardAuth(t *testing.T) {
	userID := uuid.NewString()
	hourFromNow := time.Now().Add(time.Hour)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
	}{
		{
			name:     "missing token",
			prepare:  func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "bearer header",
			prepare: func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, testSecret, userID, hourFromNow))
			},
			wantCode: http.StatusOK,
		},
		{
			name: "session cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, testSecret, userID, hourFromNow)})
			},
			wantCode: http.StatusOK,
		},
		{
			name: "wrong secret",
			prepare: func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, "other", userID, hourFromNow))
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "expired",
			prepare: func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, testSecret, userID, time.Now().Add(-time.Minute)))
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "subject is not a uuid",
			prepare: func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, testSecret, "admin", hourFromNow))
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	e := newAuthServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, userID, rec.Body.String())
			} else {
				assert.JSONEq(t, `{"error":{"code":"UNAUTHORIZED","message":"Unauthorized access"}}`, rec.Body.String())
			}
		})
	}
}
