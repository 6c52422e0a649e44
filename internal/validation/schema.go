// Package validation declares the shape of an invoice form submission and
// turns raw form values into typed, validated records.
//
// Rules are expressed as go-playground/validator tags and evaluated one field
// at a time, since form values arrive as an untyped url.Values map rather than
// a bound struct. The amount field is coerced from text to a decimal before
// any rule runs on it.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"invoicedash/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	FieldID         = "id"
	FieldCustomerID = "customerId"
	FieldDate       = "date"
	FieldStatus     = "status"
	FieldAmount     = "amount"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
)

type field struct {
	name string
	kind fieldKind
	// tag is a validator tag applied to the raw text (or to the coerced
	// number for kindNumber). Empty means presence is the only rule.
	tag string
}

// Schema is an ordered set of field rules
type Schema struct {
	fields []field
}

var validate = validator.New()

// InvoiceSchema is the full invoice record shape
var InvoiceSchema = Schema{fields: []field{
	{name: FieldID, kind: kindText},
	// An empty id can never reference a customer row.
	{name: FieldCustomerID, kind: kindText, tag: "required"},
	{name: FieldDate, kind: kindText},
	{name: FieldStatus, kind: kindText, tag: "oneof=pending paid"},
	{name: FieldAmount, kind: kindNumber},
}}

// Server-assigned fields are omitted from the submission schemas.
var (
	CreateInvoiceSchema = InvoiceSchema.Omit(FieldID, FieldDate)
	UpdateInvoiceSchema = InvoiceSchema.Omit(FieldID, FieldDate)
)

// Omit returns a copy of the schema without the named fields
func (s Schema) Omit(names ...string) Schema {
	out := Schema{fields: make([]field, 0, len(s.fields))}
	for _, f := range s.fields {
		if slices.Contains(names, f.name) {
			continue
		}
		out.fields = append(out.fields, f)
	}
	return out
}

// Fields lists the field names in declaration order
func (s Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Record is a submission that passed a schema. Fields the schema omits are
// left at their zero value.
type Record struct {
	ID         string
	CustomerID string
	Date       string
	Status     models.InvoiceStatus
	Amount     decimal.Decimal
}

// Form returns the create/update view of the record
func (r Record) Form() models.InvoiceForm {
	return models.InvoiceForm{
		CustomerID: r.CustomerID,
		Status:     r.Status,
		Amount:     r.Amount,
	}
}

// Parse validates values against the schema. Every failing field is
// reported; the returned error is always a *Error.
func (s Schema) Parse(values url.Values) (Record, error) {
	var rec Record
	var failures []FieldError

	for _, f := range s.fields {
		raw, present := lookup(values, f.name)

		switch f.kind {
		case kindNumber:
			amount, err := coerceNumber(raw)
			if err != nil {
				failures = append(failures, FieldError{Field: f.name, Message: "must be a number"})
				continue
			}
			if f.tag != "" {
				if err := validate.Var(amount.InexactFloat64(), f.tag); err != nil {
					failures = append(failures, FieldError{Field: f.name, Message: message(err)})
					continue
				}
			}
			rec.set(f.name, raw, amount)

		default:
			if !present {
				failures = append(failures, FieldError{Field: f.name, Message: "is required"})
				continue
			}
			if f.tag != "" {
				if err := validate.Var(raw, f.tag); err != nil {
					failures = append(failures, FieldError{Field: f.name, Message: message(err)})
					continue
				}
			}
			rec.set(f.name, raw, decimal.Zero)
		}
	}

	if len(failures) > 0 {
		return Record{}, &Error{Fields: failures}
	}
	return rec, nil
}

func (r *Record) set(name, raw string, amount decimal.Decimal) {
	switch name {
	case FieldID:
		r.ID = raw
	case FieldCustomerID:
		r.CustomerID = raw
	case FieldDate:
		r.Date = raw
	case FieldStatus:
		r.Status = models.InvoiceStatus(raw)
	case FieldAmount:
		r.Amount = amount
	}
}

func lookup(values url.Values, name string) (string, bool) {
	v, ok := values[name]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// coerceNumber follows form-number semantics: surrounding whitespace is
// ignored and a blank or missing value reads as zero.
func coerceNumber(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(trimmed)
}

func message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
		}
		return fe.Tag()
	}
}
