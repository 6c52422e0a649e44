package common

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
)

// maxSearchQueryLength bounds the listing search term
const maxSearchQueryLength = 100

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// MessageResponse is the body of a form action that could not be completed
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationErrors sends a validation error response with one entry per field
func SendValidationErrors(c echo.Context, details map[string]string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", resource+" not found", nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendActionMessage sends the generic message of a failed form action
func SendActionMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, MessageResponse{Message: message})
}

// WithUserID stores the authenticated user id on ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// SanitizeSearchQuery strips LIKE wildcards and bounds the length of a search term
func SanitizeSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, "%", "")
	query = strings.ReplaceAll(query, "_", "")

	if utf8.RuneCountInString(query) > maxSearchQueryLength {
		query = string([]rune(query)[:maxSearchQueryLength])
	}

	return strings.TrimSpace(query)
}

// ParsePage reads a 1-based page number, defaulting to 1 and capped at maxPage
func ParsePage(raw string, maxPage int) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return maxPage
	}
	if err != nil || page < 1 {
		return 1
	}
	return min(page, maxPage)
}
