package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicedash/internal/caching"
	"invoicedash/internal/models"
	"invoicedash/internal/repositories"

	"github.com/rs/zerolog"
)

const (
	DashboardPath  = "/dashboard"
	summaryVariant = "summary"
)

// DashboardService computes the dashboard summary cards
type DashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
	Refresh(ctx context.Context) (*models.DashboardSummary, error)
}

type dashboardService struct {
	invoiceRepo repositories.InvoiceRepository
	cacheSvc    caching.CacheService
	log         zerolog.Logger
	now         func() time.Time
}

func NewDashboardService(invoiceRepo repositories.InvoiceRepository, cacheSvc caching.CacheService, log zerolog.Logger) DashboardService {
	return &dashboardService{
		invoiceRepo: invoiceRepo,
		cacheSvc:    cacheSvc,
		log:         log.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

// Summary serves the cached summary, computing it on a miss
func (s *dashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	lookup, err := s.cacheSvc.GetView(ctx, DashboardPath, summaryVariant)
	if err != nil {
		s.log.Warn().Err(err).Msg("summary cache read failed")
	}
	if lookup.Hit {
		var cached models.DashboardSummary
		if err := json.Unmarshal(lookup.Data, &cached); err == nil {
			return &cached, nil
		}
	}
	return s.refresh(ctx, lookup.Generation)
}

// Refresh recomputes the summary from the database and stores it
func (s *dashboardService) Refresh(ctx context.Context) (*models.DashboardSummary, error) {
	gen, err := s.cacheSvc.Generation(ctx, DashboardPath)
	if err != nil {
		s.log.Warn().Err(err).Msg("summary cache generation read failed")
	}
	return s.refresh(ctx, gen)
}

func (s *dashboardService) refresh(ctx context.Context, generation int64) (*models.DashboardSummary, error) {
	summary, err := s.invoiceRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute dashboard summary: %w", err)
	}
	summary.GeneratedAt = s.now().UTC()

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	if err := s.cacheSvc.SetView(ctx, DashboardPath, summaryVariant, generation, data); err != nil {
		s.log.Warn().Err(err).Msg("summary cache write failed")
	}
	return summary, nil
}
