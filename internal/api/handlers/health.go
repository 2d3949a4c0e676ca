package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/nba-props/internal/services"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerStates exposes upstream circuit breaker states
type BreakerStates interface {
	States() map[string]string
}

// JobReporter exposes the scheduled pass job
type JobReporter interface {
	Job() services.JobInfo
}

type HealthHandler struct {
	database  Pinger
	cache     Pinger
	breakers  BreakerStates
	scheduler JobReporter
}

// NewHealthHandler builds the health endpoints; cache and scheduler may be nil
func NewHealthHandler(database, cache Pinger, breakers BreakerStates, scheduler JobReporter) *HealthHandler {
	return &HealthHandler{
		database:  database,
		cache:     cache,
		breakers:  breakers,
		scheduler: scheduler,
	}
}

// GetHealth always returns 200 while the process is serving
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"service": "nba-props",
	})
}

// GetReady checks the database and cache and reports upstream breakers.
// An open breaker degrades passes but does not fail readiness.
func (h *HealthHandler) GetReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if err := h.database.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			ready = false
		} else {
			checks["cache"] = "ok"
		}
	}

	body := gin.H{
		"status":   "ready",
		"checks":   checks,
		"breakers": h.breakers.States(),
	}
	if h.scheduler != nil {
		body["scheduler"] = h.scheduler.Job()
	}

	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
