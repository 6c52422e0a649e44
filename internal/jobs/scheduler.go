package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"invoicedash/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// SummaryRefreshJob is the name of the dashboard summary refresh job
const SummaryRefreshJob = "dashboard-summary-refresh"

// JobScheduler runs the periodic background work of the dashboard
type JobScheduler struct {
	scheduler    gocron.Scheduler
	dashboardSvc services.DashboardService
	log          zerolog.Logger
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers its jobs. The summary is
// refreshed once at start and then every summaryInterval.
func NewJobScheduler(dashboardSvc services.DashboardService, summaryInterval time.Duration, log zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		dashboardSvc: dashboardSvc,
		log:          log.With().Str("component", "job_scheduler").Logger(),
		jobs:         make(map[string]gocron.Job),
	}

	job, err := scheduler.NewJob(
		gocron.DurationJob(summaryInterval),
		gocron.NewTask(js.refreshDashboardSummary),
		gocron.WithName(SummaryRefreshJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register %s: %w", SummaryRefreshJob, err)
	}
	js.jobs[SummaryRefreshJob] = job

	js.log.Info().Int("jobs", len(js.jobs)).Dur("summary_interval", summaryInterval).Msg("registered background jobs")
	return js, nil
}

func (js *JobScheduler) Start() {
	js.log.Info().Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// RunNow triggers a registered job outside its schedule
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	return job.RunNow()
}

func (js *JobScheduler) refreshDashboardSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary, err := js.dashboardSvc.Refresh(ctx)
	if err != nil {
		js.log.Error().Err(err).Msg("dashboard summary refresh failed")
		return
	}
	js.log.Debug().
		Int64("invoices", summary.InvoiceCount).
		Int64("total_pending", summary.TotalPending).
		Msg("dashboard summary refreshed")
}
