package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nba-props/internal/props"
	"github.com/stitts-dev/nba-props/internal/repository"
	"github.com/stitts-dev/nba-props/internal/services"
	"github.com/stitts-dev/nba-props/pkg/utils"
)

const dateLayout = "2006-01-02"

// ProjectionReader is the read side of the projection store
type ProjectionReader interface {
	ListResults(ctx context.Context, date string, category props.Category) ([]props.ProjectionResult, error)
	LatestPass(ctx context.Context, date string) (*props.PassResult, error)
	GetPass(ctx context.Context, id string) (*props.PassResult, error)
	ListPasses(ctx context.Context, limit int) ([]props.PassResult, error)
}

// ProjectionCache stores JSON-encoded responses
type ProjectionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// PassTrigger starts passes on demand
type PassTrigger interface {
	TriggerAsync(ctx context.Context, from time.Time) bool
	InFlight(date string) bool
}

type ProjectionHandler struct {
	store    ProjectionReader
	cache    ProjectionCache
	trigger  PassTrigger
	cacheTTL time.Duration
	logger   *logrus.Logger
	now      func() time.Time
	// passCtx outlives the request that triggers a pass
	passCtx context.Context
}

func NewProjectionHandler(passCtx context.Context, store ProjectionReader, cache ProjectionCache, trigger PassTrigger, cacheTTL time.Duration, logger *logrus.Logger) *ProjectionHandler {
	return &ProjectionHandler{
		store:    store,
		cache:    cache,
		trigger:  trigger,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
		passCtx:  passCtx,
	}
}

// GetProjections returns the latest completed projections for ?date=
// (default today), optionally narrowed by ?stat=
func (h *ProjectionHandler) GetProjections(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	category := props.Category(c.Query("stat"))
	if category != "" && !category.Valid() {
		utils.SendValidationError(c, "Invalid stat", "stat must be one of pts, ast, reb, pra")
		return
	}

	key := services.LatestProjectionsCacheKey(date)
	if category != "" {
		key += ":" + string(category)
	}

	var results []props.ProjectionResult
	if h.cache != nil {
		err := h.cache.Get(c.Request.Context(), key, &results)
		if err == nil {
			utils.SendSuccessWithMeta(c, results, &utils.Meta{Date: date, Total: int64(len(results))})
			return
		}
		if !errors.Is(err, services.ErrCacheMiss) {
			h.logger.WithError(err).Warn("Projection cache read failed")
		}
	}

	results, err := h.store.ListResults(c.Request.Context(), date, category)
	if errors.Is(err, repository.ErrNotFound) {
		utils.SendNotFound(c, "No completed pass for "+date)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("date", date).Error("Failed to load projections")
		utils.SendInternalError(c, "Failed to load projections")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), key, results, h.cacheTTL); err != nil {
			h.logger.WithError(err).Warn("Projection cache write failed")
		}
	}

	utils.SendSuccessWithMeta(c, results, &utils.Meta{Date: date, Total: int64(len(results))})
}

// GetPassStatus returns the latest pass for ?date= and whether one is running
func (h *ProjectionHandler) GetPassStatus(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	running := h.trigger.InFlight(date)
	pass, err := h.store.LatestPass(c.Request.Context(), date)
	if errors.Is(err, repository.ErrNotFound) {
		utils.SendSuccess(c, gin.H{"date": date, "running": running, "pass": nil})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("date", date).Error("Failed to load pass status")
		utils.SendInternalError(c, "Failed to load pass status")
		return
	}

	utils.SendSuccess(c, gin.H{"date": date, "running": running, "pass": pass})
}

// ListPasses returns recent passes without their results
func (h *ProjectionHandler) ListPasses(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			utils.SendValidationError(c, "Invalid limit", "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	passes, err := h.store.ListPasses(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list passes")
		utils.SendInternalError(c, "Failed to list passes")
		return
	}

	utils.SendSuccessWithMeta(c, passes, &utils.Meta{Total: int64(len(passes))})
}

// GetPass returns one pass with its results
func (h *ProjectionHandler) GetPass(c *gin.Context) {
	pass, err := h.store.GetPass(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		utils.SendNotFound(c, "Pass not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load pass")
		utils.SendInternalError(c, "Failed to load pass")
		return
	}

	utils.SendSuccess(c, pass)
}

// RunPass starts a pass for ?date= (default today) in the background
func (h *ProjectionHandler) RunPass(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	from, _ := time.ParseInLocation(dateLayout, date, time.Local)

	alreadyRunning := h.trigger.TriggerAsync(h.passCtx, from)
	h.logger.WithFields(logrus.Fields{
		"date":            date,
		"already_running": alreadyRunning,
	}).Info("Projection pass requested")

	c.JSON(http.StatusAccepted, utils.Response{
		Success: true,
		Data:    gin.H{"date": date, "already_running": alreadyRunning},
	})
}

func (h *ProjectionHandler) dateParam(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		return h.now().Format(dateLayout), true
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		utils.SendValidationError(c, "Invalid date", "date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}
