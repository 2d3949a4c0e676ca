package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stitts-dev/nba-props/internal/models"
	"github.com/stitts-dev/nba-props/internal/props"
)

// ErrNotFound is returned when no pass matches the query
var ErrNotFound = errors.New("projection pass not found")

// ProjectionRepository persists passes and their results
type ProjectionRepository struct {
	db *gorm.DB
}

// NewProjectionRepository creates a repository on an open connection
func NewProjectionRepository(db *gorm.DB) *ProjectionRepository {
	return &ProjectionRepository{db: db}
}

// Migrate creates or updates the projection tables
func (r *ProjectionRepository) Migrate() error {
	return r.db.AutoMigrate(&models.ProjectionPass{}, &models.ProjectionResult{})
}

// SavePass stores a pass. A completed pass replaces the results of any
// earlier pass for the same date; a failed pass is recorded on its own and
// leaves earlier results in place.
func (r *ProjectionRepository) SavePass(ctx context.Context, pass *props.PassResult) error {
	row, err := models.NewProjectionPass(pass)
	if err != nil {
		return fmt.Errorf("failed to convert pass %s: %w", pass.PassID, err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.Status == props.PassStatusCompleted {
			earlier := tx.Model(&models.ProjectionPass{}).Select("id").Where("pass_date = ?", row.PassDate)
			if err := tx.Where("pass_id IN (?)", earlier).Delete(&models.ProjectionResult{}).Error; err != nil {
				return fmt.Errorf("failed to clear results for %s: %w", row.PassDate, err)
			}
		}

		results := row.Results
		row.Results = nil
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to save pass %s: %w", row.ID, err)
		}

		if len(results) == 0 {
			return nil
		}
		for i := range results {
			results[i].PassID = row.ID
		}
		if err := tx.CreateInBatches(results, 200).Error; err != nil {
			return fmt.Errorf("failed to save results for pass %s: %w", row.ID, err)
		}
		return nil
	})
}

// GetPass loads a pass and its results by ID
func (r *ProjectionRepository) GetPass(ctx context.Context, id string) (*props.PassResult, error) {
	var row models.ProjectionPass
	err := r.db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.ToProps()
}

// LatestPass returns the most recent pass for a date regardless of status
func (r *ProjectionRepository) LatestPass(ctx context.Context, date string) (*props.PassResult, error) {
	var row models.ProjectionPass
	err := r.db.WithContext(ctx).
		Where("pass_date = ?", date).
		Order("started_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.ToProps()
}

// LatestCompleted returns the most recent completed pass for a date with
// its results
func (r *ProjectionRepository) LatestCompleted(ctx context.Context, date string) (*props.PassResult, error) {
	var row models.ProjectionPass
	err := r.db.WithContext(ctx).
		Where("pass_date = ? AND status = ?", date, props.PassStatusCompleted).
		Order("started_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetPass(ctx, row.ID)
}

// ListResults returns the results of the latest completed pass for a
// date, optionally narrowed to one category
func (r *ProjectionRepository) ListResults(ctx context.Context, date string, category props.Category) ([]props.ProjectionResult, error) {
	var pass models.ProjectionPass
	err := r.db.WithContext(ctx).
		Where("pass_date = ? AND status = ?", date, props.PassStatusCompleted).
		Order("started_at DESC").
		First(&pass).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Where("pass_id = ?", pass.ID)
	if category != "" {
		query = query.Where("stat = ?", string(category))
	}

	var rows []models.ProjectionResult
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]props.ProjectionResult, 0, len(rows))
	for _, row := range rows {
		result, err := row.ToProps()
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ListPasses returns the most recent passes, newest first
func (r *ProjectionRepository) ListPasses(ctx context.Context, limit int) ([]props.PassResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.ProjectionPass
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	passes := make([]props.PassResult, 0, len(rows))
	for _, row := range rows {
		pass, err := row.ToProps()
		if err != nil {
			return nil, err
		}
		passes = append(passes, *pass)
	}
	return passes, nil
}

// Ping checks the underlying connection
func (r *ProjectionRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
