package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nba-props/internal/props"
)

// CacheInvalidator drops cached keys
type CacheInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

// InvalidatingStore drops the cached projections for a date once a
// completed pass for that date is saved
type InvalidatingStore struct {
	store  ResultStore
	cache  CacheInvalidator
	logger *logrus.Logger
}

// NewInvalidatingStore wraps store; a nil cache disables invalidation
func NewInvalidatingStore(store ResultStore, cache CacheInvalidator, logger *logrus.Logger) *InvalidatingStore {
	return &InvalidatingStore{store: store, cache: cache, logger: logger}
}

func (s *InvalidatingStore) SavePass(ctx context.Context, pass *props.PassResult) error {
	if err := s.store.SavePass(ctx, pass); err != nil {
		return err
	}
	if s.cache == nil || pass.Status != props.PassStatusCompleted {
		return nil
	}
	if err := s.cache.Delete(ctx, ProjectionsCacheKeys(pass.Date)...); err != nil {
		s.logger.WithError(err).WithField("pass_date", pass.Date).Warn("Failed to invalidate cached projections")
	}
	return nil
}
