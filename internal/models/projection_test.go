package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stitts-dev/nba-props/internal/props"
)

func samplePass(status string) *props.PassResult {
	line := 27.5
	return &props.PassResult{
		PassID:     "9b1f0d3e-6f0c-4d59-9d1e-2f4f3b7c1a11",
		Date:       "2025-01-15",
		Status:     status,
		StartedAt:  time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 1, 15, 14, 6, 0, 0, time.UTC),
		Events:     1,
		Results: []props.ProjectionResult{
			{
				ID: "1628369-pts", GameID: "0022400555", GameDate: "2025-01-15",
				PlayerID: "1628369", PlayerName: "Jayson Tatum", Team: "BOS", Opponent: "NYK",
				Category: props.CategoryPoints, Projection: 26.91, Line: &line, LineLabel: "Over 27.5",
				HitRate: props.HitRate{L5: 40, L10: 50, Season: 48},
			},
			{
				ID: "1628369-pra", GameID: "0022400555", GameDate: "2025-01-15",
				PlayerID: "1628369", PlayerName: "Jayson Tatum", Team: "BOS", Opponent: "NYK",
				Category: props.CategoryComposite, Projection: 43.2,
			},
		},
	}
}

func TestNewProjectionPassCompleted(t *testing.T) {
	row, err := NewProjectionPass(samplePass(props.PassStatusCompleted))
	require.NoError(t, err)

	assert.Equal(t, "9b1f0d3e-6f0c-4d59-9d1e-2f4f3b7c1a11", row.ID)
	assert.Equal(t, 2, row.ResultCount)
	assert.Equal(t, StringList{"pts", "pra"}, row.Categories)
	require.Len(t, row.Results, 2)
	assert.Equal(t, "1628369-pts", row.Results[0].ResultKey)
	assert.JSONEq(t, `{"L5":40,"L10":50,"Season":48}`, string(row.Results[0].HitRate))
	assert.Nil(t, row.Results[1].Line)
}

func TestNewProjectionPassFailedDropsResults(t *testing.T) {
	pass := samplePass(props.PassStatusFailed)
	pass.Error = "schedule unavailable"

	row, err := NewProjectionPass(pass)
	require.NoError(t, err)

	assert.Empty(t, row.Results)
	assert.Zero(t, row.ResultCount)
	assert.Equal(t, "schedule unavailable", row.Error)
}

func TestProjectionPassRoundTrip(t *testing.T) {
	original := samplePass(props.PassStatusCompleted)
	row, err := NewProjectionPass(original)
	require.NoError(t, err)

	back, err := row.ToProps()
	require.NoError(t, err)

	assert.Equal(t, original.PassID, back.PassID)
	assert.Equal(t, original.Results, back.Results)
}

func TestStringListValueAndScan(t *testing.T) {
	value, err := StringList{"pts", "ast"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{\"pts\",\"ast\"}", value)

	var list StringList
	require.NoError(t, list.Scan("{pts,reb}"))
	assert.Equal(t, StringList{"pts", "reb"}, list)

	require.NoError(t, list.Scan(nil))
	assert.Nil(t, list)
}

func TestProjectionTablesMigrateAndStoreCategories(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ProjectionPass{}, &ProjectionResult{}))

	row, err := NewProjectionPass(samplePass(props.PassStatusCompleted))
	require.NoError(t, err)
	require.NoError(t, db.Create(row).Error)

	failed, err := NewProjectionPass(&props.PassResult{PassID: "failed-pass", Date: "2025-01-15", Status: props.PassStatusFailed})
	require.NoError(t, err)
	require.NoError(t, db.Create(failed).Error)

	var stored ProjectionPass
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, StringList{"pts", "pra"}, stored.Categories)

	var storedFailed ProjectionPass
	require.NoError(t, db.First(&storedFailed, "id = ?", "failed-pass").Error)
	assert.Empty(t, storedFailed.Categories)

	var results []ProjectionResult
	require.NoError(t, db.Where("pass_id = ?", row.ID).Order("id ASC").Find(&results).Error)
	assert.Len(t, results, 2)
}
