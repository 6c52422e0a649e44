package models

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether s is one of the known statuses
func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// Invoice is a stored invoice row. Amount is in cents.
type Invoice struct {
	ID         string        `json:"id" db:"id"`
	CustomerID string        `json:"customer_id" db:"customer_id"`
	Amount     int64         `json:"amount" db:"amount"`
	Status     InvoiceStatus `json:"status" db:"status"`
	Date       time.Time     `json:"date" db:"date"`
}

// InvoiceForm is a validated create/update submission. Amount is in dollars.
type InvoiceForm struct {
	CustomerID string
	Status     InvoiceStatus
	Amount     decimal.Decimal
}

// AmountInCents converts the submitted amount to minor units
func (f InvoiceForm) AmountInCents() (int64, error) {
	return ToCents(f.Amount)
}

// ErrAmountOutOfRange is returned when an amount does not fit the amount column
var ErrAmountOutOfRange = errors.New("amount out of range")

// maxAmountDigits bounds the integer digits of an amount before any exact
// arithmetic is done on it. Anything longer is out of range anyway.
const maxAmountDigits = 12

var (
	hundred  = decimal.NewFromInt(100)
	minCents = decimal.NewFromInt(math.MinInt32)
	maxCents = decimal.NewFromInt(math.MaxInt32)
)

// ToCents returns round(amount * 100), rounding half away from zero. The
// result must fit the 32-bit amount column.
func ToCents(amount decimal.Decimal) (int64, error) {
	if amount.IsZero() {
		return 0, nil
	}

	intDigits := amount.NumDigits() + int(amount.Exponent())
	if intDigits > maxAmountDigits {
		return 0, ErrAmountOutOfRange
	}
	// Below 0.001 the result is 0 whatever the exponent.
	if intDigits < -2 {
		return 0, nil
	}

	cents := amount.Mul(hundred).Round(0)
	if cents.LessThan(minCents) || cents.GreaterThan(maxCents) {
		return 0, ErrAmountOutOfRange
	}
	return cents.IntPart(), nil
}

// InvoiceListItem is a row of the invoices listing view
type InvoiceListItem struct {
	ID            string        `json:"id" db:"id"`
	CustomerID    string        `json:"customer_id" db:"customer_id"`
	CustomerName  string        `json:"name" db:"name"`
	CustomerEmail string        `json:"email" db:"email"`
	Amount        int64         `json:"amount" db:"amount"`
	Status        InvoiceStatus `json:"status" db:"status"`
	Date          time.Time     `json:"date" db:"date"`
}

// InvoicePage is one page of the filtered listing
type InvoicePage struct {
	Query      string             `json:"query"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Invoices   []*InvoiceListItem `json:"invoices"`
}
