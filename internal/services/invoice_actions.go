package services

import (
	"context"
	"net/url"
	"time"

	"invoicedash/internal/models"
	"invoicedash/internal/repositories"
	"invoicedash/internal/validation"

	"github.com/rs/zerolog"
)

// InvoicesPath is the invoices listing view. Every successful write
// invalidates it; create and update also navigate back to it.
const InvoicesPath = "/dashboard/invoices"

const (
	MsgCreateFailed = "Error while creating an invoice"
	MsgUpdateFailed = "Error while updating an invoice"
	MsgDeleteFailed = "Error while deleting an invoice"
)

// InvoiceActions are the invoice form-submission handlers.
//
// A malformed submission is returned as a *validation.Error and nothing is
// written. A failed write is not an error: it comes back as a ResultFailed
// with a generic message, and the store error is only logged.
type InvoiceActions interface {
	CreateInvoice(ctx context.Context, form url.Values) (*ActionResult, error)
	UpdateInvoice(ctx context.Context, id string, form url.Values) (*ActionResult, error)
	DeleteInvoice(ctx context.Context, id string) (*ActionResult, error)
}

type invoiceActions struct {
	invoiceRepo repositories.InvoiceRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewInvoiceActions creates the invoice form actions
func NewInvoiceActions(invoiceRepo repositories.InvoiceRepository, log zerolog.Logger) InvoiceActions {
	return &invoiceActions{
		invoiceRepo: invoiceRepo,
		log:         log.With().Str("component", "invoice_actions").Logger(),
		now:         time.Now,
	}
}

// today is the current UTC calendar date at midnight
func (a *invoiceActions) today() time.Time {
	now := a.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (a *invoiceActions) CreateInvoice(ctx context.Context, form url.Values) (*ActionResult, error) {
	rec, err := validation.CreateInvoiceSchema.Parse(form)
	if err != nil {
		return nil, err
	}
	submitted := rec.Form()

	amount, err := submitted.AmountInCents()
	if err != nil {
		a.log.Error().Err(err).Str("amount", submitted.Amount.String()).Msg("failed to create invoice")
		return Failed(MsgCreateFailed), nil
	}

	invoice := &models.Invoice{
		CustomerID: submitted.CustomerID,
		Amount:     amount,
		Status:     submitted.Status,
		Date:       a.today(),
	}

	if err := a.invoiceRepo.Create(ctx, invoice); err != nil {
		a.log.Error().Err(err).Str("customer_id", invoice.CustomerID).Msg("failed to create invoice")
		return Failed(MsgCreateFailed), nil
	}

	a.log.Info().
		Str("invoice_id", invoice.ID).
		Str("customer_id", invoice.CustomerID).
		Int64("amount", invoice.Amount).
		Str("status", string(invoice.Status)).
		Msg("invoice created")

	return Redirect(InvoicesPath, Invalidate(InvoicesPath)), nil
}

func (a *invoiceActions) UpdateInvoice(ctx context.Context, id string, form url.Values) (*ActionResult, error) {
	rec, err := validation.UpdateInvoiceSchema.Parse(form)
	if err != nil {
		return nil, err
	}
	submitted := rec.Form()

	amount, err := submitted.AmountInCents()
	if err != nil {
		a.log.Error().Err(err).Str("invoice_id", id).Str("amount", submitted.Amount.String()).Msg("failed to update invoice")
		return Failed(MsgUpdateFailed), nil
	}

	affected, err := a.invoiceRepo.Update(ctx, id, submitted.CustomerID, amount, submitted.Status)
	if err != nil {
		a.log.Error().Err(err).Str("invoice_id", id).Msg("failed to update invoice")
		return Failed(MsgUpdateFailed), nil
	}
	if affected == 0 {
		// Not distinguished from a match.
		a.log.Warn().Str("invoice_id", id).Msg("update matched no invoice")
	}

	return Redirect(InvoicesPath, Invalidate(InvoicesPath)), nil
}

func (a *invoiceActions) DeleteInvoice(ctx context.Context, id string) (*ActionResult, error) {
	affected, err := a.invoiceRepo.Delete(ctx, id)
	if err != nil {
		a.log.Error().Err(err).Str("invoice_id", id).Msg("failed to delete invoice")
		return Failed(MsgDeleteFailed), nil
	}
	if affected == 0 {
		a.log.Warn().Str("invoice_id", id).Msg("delete matched no invoice")
	}

	return Done(Invalidate(InvoicesPath)), nil
}
