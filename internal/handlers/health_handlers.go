package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *pgxpool.Pool and caching.CacheService
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	db      Pinger
	cache   Pinger
	version string
	timeout time.Duration
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db, cache Pinger, version string) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		version: version,
		timeout: 2 * time.Second,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck reports each dependency. The database is critical; a missing
// cache only degrades the service.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   h.version,
	}

	statusCode := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.cache.Ping(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
	} else {
		health.Services["redis"] = "healthy"
	}

	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
