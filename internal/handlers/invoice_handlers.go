package handlers

import (
	"net/http"
	"strings"

	"invoicedash/internal/caching"
	"invoicedash/internal/common"
	"invoicedash/internal/repositories"
	"invoicedash/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	actions        services.InvoiceActions
	invoiceService services.InvoiceService
	cacheSvc       caching.CacheService
	log            zerolog.Logger
}

// NewInvoiceHandlers creates a new invoice handlers instance
func NewInvoiceHandlers(actions services.InvoiceActions, invoiceService services.InvoiceService, cacheSvc caching.CacheService, log zerolog.Logger) *InvoiceHandlers {
	return &InvoiceHandlers{
		actions:        actions,
		invoiceService: invoiceService,
		cacheSvc:       cacheSvc,
		log:            log.With().Str("component", "invoice_handlers").Logger(),
	}
}

// Register mounts the invoice routes on g, which is expected to be /dashboard
func (h *InvoiceHandlers) Register(g *echo.Group) {
	g.GET("/invoices", h.ListInvoices)
	g.POST("/invoices", h.CreateInvoice)
	g.GET("/invoices/:id", h.GetInvoice)
	g.POST("/invoices/:id", h.UpdateInvoice)
	g.PUT("/invoices/:id", h.UpdateInvoice)
	g.POST("/invoices/:id/delete", h.DeleteInvoice)
	g.DELETE("/invoices/:id", h.DeleteInvoice)
}

// ListInvoices handles GET /dashboard/invoices?query=&page=
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	query := common.SanitizeSearchQuery(c.QueryParam("query"))
	page := common.ParsePage(c.QueryParam("page"), repositories.MaxPage)

	result, err := h.invoiceService.ListInvoices(c.Request().Context(), query, page)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list invoices")
		return common.SendServerError(c, "Failed to fetch invoices")
	}

	return c.JSON(http.StatusOK, result)
}

// GetInvoice handles GET /dashboard/invoices/:id
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))

	invoice, err := h.invoiceService.GetInvoice(c.Request().Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("invoice_id", id).Msg("failed to fetch invoice")
		return common.SendServerError(c, "Failed to fetch invoice")
	}
	if invoice == nil {
		return common.SendNotFoundError(c, "invoice")
	}

	return c.JSON(http.StatusOK, invoice)
}

// CreateInvoice handles POST /dashboard/invoices (form-encoded)
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	if _, err := c.FormParams(); err != nil {
		return common.SendClientError(c, "Invalid form submission")
	}

	result, err := h.actions.CreateInvoice(c.Request().Context(), c.Request().PostForm)
	if err != nil {
		return err
	}
	return h.respond(c, result)
}

// UpdateInvoice handles POST|PUT /dashboard/invoices/:id (form-encoded)
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	if _, err := c.FormParams(); err != nil {
		return common.SendClientError(c, "Invalid form submission")
	}

	result, err := h.actions.UpdateInvoice(c.Request().Context(), c.Param("id"), c.Request().PostForm)
	if err != nil {
		return err
	}
	return h.respond(c, result)
}

// DeleteInvoice handles POST /dashboard/invoices/:id/delete and DELETE /dashboard/invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	result, err := h.actions.DeleteInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return h.respond(c, result)
}

// respond carries out the effects of an action and then writes its outcome.
// A failed invalidation is logged; the write it follows already succeeded.
func (h *InvoiceHandlers) respond(c echo.Context, result *services.ActionResult) error {
	ctx := c.Request().Context()

	for _, effect := range result.Effects {
		switch effect.Kind {
		case services.EffectInvalidate:
			if err := h.cacheSvc.InvalidatePath(ctx, effect.Path); err != nil {
				h.log.Warn().Err(err).Str("path", effect.Path).Msg("cache invalidation failed")
			}
		}
	}

	switch result.Kind {
	case services.ResultRedirect:
		return c.Redirect(http.StatusSeeOther, result.Path)
	case services.ResultFailed:
		return common.SendActionMessage(c, result.Message)
	default:
		return c.NoContent(http.StatusNoContent)
	}
}
