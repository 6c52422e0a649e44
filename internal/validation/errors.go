package validation

import (
	"fmt"
	"strings"
)

// FieldError describes a single form field that failed its rule
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a submission does not satisfy a schema.
// It always carries at least one field error.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Message))
	}
	return "invalid form submission: " + strings.Join(parts, "; ")
}

// Details flattens the field errors into a field -> message map
func (e *Error) Details() map[string]string {
	details := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		details[f.Field] = f.Message
	}
	return details
}

// Has reports whether field failed validation
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
