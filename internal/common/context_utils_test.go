package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"":                      1,
		"1":                     1,
		"4":                     4,
		" 2 ":                   2,
		"0":                     1,
		"-3":                    1,
		"abc":                   1,
		"50":                    50,
		"51":                    50,
		"9223372036854775807":   50,
		"99999999999999999999":  50,
		"-99999999999999999999": 1,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParsePage(raw, 50), raw)
	}
}

func TestSanitizeSearchQuery(t *testing.T) {
	assert.Equal(t, "", SanitizeSearchQuery("   "))
	assert.Equal(t, "lee", SanitizeSearchQuery(" lee "))
	assert.Equal(t, "100", SanitizeSearchQuery("100%"))
	assert.Equal(t, "pendin", SanitizeSearchQuery("pendin_"))
	assert.Len(t, SanitizeSearchQuery(strings.Repeat("a", 250)), 100)
}

func TestSanitizeSearchQuery_MultiByte(t *testing.T) {
	got := SanitizeSearchQuery("a" + strings.Repeat("é", 120))

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 100, utf8.RuneCountInString(got))
	assert.Equal(t, "a"+strings.Repeat("é", 99), got)

	assert.Equal(t, "Zoë Ağaoğlu", SanitizeSearchQuery(" Zoë Ağaoğlu "))
}

func TestUserIDContext(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = GetUserIDFromContext(WithUserID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := GetUserIDFromContext(WithUserID(context.Background(), "410544b2-4001-4271-9855-fec4b6a6442a"))
	assert.True(t, ok)
	assert.Equal(t, "410544b2-4001-4271-9855-fec4b6a6442a", id)
}

func TestSendValidationErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	require.NoError(t, SendValidationErrors(c, map[string]string{"status": "must be one of: pending, paid"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"VALIDATION_ERROR","message":"Validation failed","details":{"status":"must be one of: pending, paid"}}}`, rec.Body.String())
}

func TestSendActionMessage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	require.NoError(t, SendActionMessage(c, "Error while creating an invoice"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Error while creating an invoice"}`, rec.Body.String())
}
