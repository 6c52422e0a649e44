package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"invoicedash/internal/caching"
	"invoicedash/internal/config"
	"invoicedash/internal/handlers"
	"invoicedash/internal/jobs"
	"invoicedash/internal/logger"
	"invoicedash/internal/middleware"
	"invoicedash/internal/repositories"
	"invoicedash/internal/services"
	"invoicedash/pkg/database"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Primary.Env, cfg.Primary.LogLevel)
	if cfg.Auth.Generated() {
		log.Warn().Msg("auth.secret_key not set, using a generated secret; tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	pool, err := database.NewPool(ctx, cfg.Database, cfg.Primary.Env, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	// Redis cache
	cacheSvc, err := caching.NewRedisCacheService(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.TTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create cache service")
	}
	defer cacheSvc.Close()

	invoiceRepo := repositories.NewInvoiceRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)

	invoiceActions := services.NewInvoiceActions(invoiceRepo, log)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, cacheSvc, log)
	dashboardSvc := services.NewDashboardService(invoiceRepo, cacheSvc, log)

	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceActions, invoiceSvc, cacheSvc, log)
	dashboardHandlers := handlers.NewDashboardHandlers(dashboardSvc, log)
	customerHandlers := handlers.NewCustomerHandlers(customerRepo, log)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, cfg.Primary.Version)

	scheduler, err := jobs.NewJobScheduler(dashboardSvc, cfg.Jobs.SummaryInterval, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler(log)

	// Global middleware
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.Secure())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.VersionHeader(cfg.Primary.Version))

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// Dashboard routes
	dashboard := e.Group("/dashboard", middleware.DashboardAuth(cfg.Auth.SecretKey))
	dashboard.GET("", dashboardHandlers.Summary)
	dashboard.GET("/customers", customerHandlers.ListCustomers)
	invoiceHandlers.Register(dashboard)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	scheduler.Start()

	go func() {
		log.Info().
			Str("version", cfg.Primary.Version).
			Int("port", cfg.Server.Port).
			Msg("invoicedash server starting")
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := scheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
}
