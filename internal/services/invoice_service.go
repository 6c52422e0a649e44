package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"invoicedash/internal/caching"
	"invoicedash/internal/models"
	"invoicedash/internal/repositories"

	"github.com/rs/zerolog"
)

// InvoiceService serves the read side of the invoices dashboard
type InvoiceService interface {
	ListInvoices(ctx context.Context, query string, page int) (*models.InvoicePage, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
}

type invoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	cacheSvc    caching.CacheService
	log         zerolog.Logger
}

func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, cacheSvc caching.CacheService, log zerolog.Logger) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		cacheSvc:    cacheSvc,
		log:         log.With().Str("component", "invoice_service").Logger(),
	}
}

func listingVariant(query string, page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("query", query)
	return v.Encode()
}

// ListInvoices reads through the cached listing view. Cache errors are logged
// and fall back to the database.
func (s *invoiceService) ListInvoices(ctx context.Context, query string, page int) (*models.InvoicePage, error) {
	if page < 1 {
		page = 1
	}
	variant := listingVariant(query, page)

	lookup, err := s.cacheSvc.GetView(ctx, InvoicesPath, variant)
	if err != nil {
		s.log.Warn().Err(err).Str("variant", variant).Msg("listing cache read failed")
	} else if lookup.Hit {
		var cached models.InvoicePage
		if err := json.Unmarshal(lookup.Data, &cached); err == nil {
			return &cached, nil
		}
		s.log.Warn().Str("variant", variant).Msg("discarding undecodable listing cache entry")
	}

	invoices, err := s.invoiceRepo.ListFiltered(ctx, query, page)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	totalPages, err := s.invoiceRepo.CountPages(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count invoice pages: %w", err)
	}

	result := &models.InvoicePage{
		Query:      query,
		Page:       page,
		TotalPages: totalPages,
		Invoices:   invoices,
	}

	if data, err := json.Marshal(result); err == nil {
		if err := s.cacheSvc.SetView(ctx, InvoicesPath, variant, lookup.Generation, data); err != nil {
			s.log.Warn().Err(err).Str("variant", variant).Msg("listing cache write failed")
		}
	}

	return result, nil
}

// GetInvoice returns nil, nil for an unknown id
func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return invoice, nil
}
