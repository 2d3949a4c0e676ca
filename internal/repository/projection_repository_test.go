package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stitts-dev/nba-props/internal/props"
)

type ProjectionRepositoryTestSuite struct {
	suite.Suite
	repo *ProjectionRepository
	ctx  context.Context
}

// newTestRepository opens an in-memory database pinned to one connection
func newTestRepository(t *testing.T) *ProjectionRepository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := NewProjectionRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func (s *ProjectionRepositoryTestSuite) SetupTest() {
	s.repo = newTestRepository(s.T())
	s.ctx = context.Background()
}

func TestProjectionRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectionRepositoryTestSuite))
}

func pass(id, date, status string, startedAt time.Time, results ...props.ProjectionResult) *props.PassResult {
	return &props.PassResult{
		PassID:     id,
		Date:       date,
		Status:     status,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(5 * time.Minute),
		Events:     1,
		Results:    results,
	}
}

func result(playerID, name string, c props.Category, projection float64) props.ProjectionResult {
	return props.ProjectionResult{
		ID:         playerID + "-" + string(c),
		GameID:     "0022400555",
		GameDate:   "2025-01-15",
		PlayerID:   playerID,
		PlayerName: name,
		Team:       "BOS",
		Opponent:   "NYK",
		Category:   c,
		Projection: projection,
		HitRate:    props.HitRate{L5: 60, L10: 50, Season: 55},
	}
}

var morning = time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)

func (s *ProjectionRepositoryTestSuite) TestSaveAndGetPass() {
	line := 26.5
	first := result("1628369", "Jayson Tatum", props.CategoryPoints, 26.91)
	first.Line = &line
	first.LineLabel = "Over 26.5"

	err := s.repo.SavePass(s.ctx, pass("a1d4d0a8-0a6e-4c43-9a57-6f1b8d0f0c01", "2025-01-15", props.PassStatusCompleted, morning,
		first,
		result("1628369", "Jayson Tatum", props.CategoryComposite, 43.2),
	))
	s.Require().NoError(err)

	got, err := s.repo.GetPass(s.ctx, "a1d4d0a8-0a6e-4c43-9a57-6f1b8d0f0c01")
	s.Require().NoError(err)

	s.Equal(props.PassStatusCompleted, got.Status)
	s.Require().Len(got.Results, 2)
	s.Equal("1628369-pts", got.Results[0].ID)
	s.Require().NotNil(got.Results[0].Line)
	s.Equal(26.5, *got.Results[0].Line)
	s.Equal(props.HitRate{L5: 60, L10: 50, Season: 55}, got.Results[0].HitRate)
	s.Nil(got.Results[1].Line)
}

func (s *ProjectionRepositoryTestSuite) TestGetPassNotFound() {
	_, err := s.repo.GetPass(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)

	_, err = s.repo.LatestPass(s.ctx, "2025-01-15")
	s.ErrorIs(err, ErrNotFound)

	_, err = s.repo.ListResults(s.ctx, "2025-01-15", "")
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProjectionRepositoryTestSuite) TestCompletedPassReplacesEarlierResults() {
	s.Require().NoError(s.repo.SavePass(s.ctx, pass("pass-1", "2025-01-15", props.PassStatusCompleted, morning,
		result("1628369", "Jayson Tatum", props.CategoryPoints, 25.0),
		result("1627759", "Jaylen Brown", props.CategoryPoints, 22.0),
	)))
	s.Require().NoError(s.repo.SavePass(s.ctx, pass("pass-2", "2025-01-15", props.PassStatusCompleted, morning.Add(time.Hour),
		result("1628369", "Jayson Tatum", props.CategoryPoints, 27.0),
	)))

	results, err := s.repo.ListResults(s.ctx, "2025-01-15", "")
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(27.0, results[0].Projection)

	earlier, err := s.repo.GetPass(s.ctx, "pass-1")
	s.Require().NoError(err)
	s.Empty(earlier.Results, "earlier results are replaced")
}

func (s *ProjectionRepositoryTestSuite) TestFailedPassKeepsPreviousResults() {
	s.Require().NoError(s.repo.SavePass(s.ctx, pass("pass-1", "2025-01-15", props.PassStatusCompleted, morning,
		result("1628369", "Jayson Tatum", props.CategoryPoints, 25.0),
	)))

	failed := pass("pass-2", "2025-01-15", props.PassStatusFailed, morning.Add(time.Hour))
	failed.Error = "schedule unavailable"
	s.Require().NoError(s.repo.SavePass(s.ctx, failed))

	latest, err := s.repo.LatestPass(s.ctx, "2025-01-15")
	s.Require().NoError(err)
	s.Equal(props.PassStatusFailed, latest.Status)
	s.Equal("schedule unavailable", latest.Error)

	completed, err := s.repo.LatestCompleted(s.ctx, "2025-01-15")
	s.Require().NoError(err)
	s.Equal("pass-1", completed.PassID)
	s.Len(completed.Results, 1)
}

func (s *ProjectionRepositoryTestSuite) TestListResultsByCategory() {
	s.Require().NoError(s.repo.SavePass(s.ctx, pass("pass-1", "2025-01-15", props.PassStatusCompleted, morning,
		result("1628369", "Jayson Tatum", props.CategoryPoints, 25.0),
		result("1628369", "Jayson Tatum", props.CategoryRebounds, 8.4),
		result("1628369", "Jayson Tatum", props.CategoryAssists, 4.9),
	)))

	results, err := s.repo.ListResults(s.ctx, "2025-01-15", props.CategoryRebounds)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("1628369-reb", results[0].ID)
}

func (s *ProjectionRepositoryTestSuite) TestListPassesNewestFirst() {
	s.Require().NoError(s.repo.SavePass(s.ctx, pass("pass-1", "2025-01-14", props.PassStatusCompleted, morning.Add(-24*time.Hour))))
	s.Require().NoError(s.repo.SavePass(s.ctx, pass("pass-2", "2025-01-15", props.PassStatusCompleted, morning)))
	s.Require().NoError(s.repo.SavePass(s.ctx, pass("pass-3", "2025-01-16", props.PassStatusFailed, morning.Add(24*time.Hour))))

	passes, err := s.repo.ListPasses(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(passes, 2)
	s.Equal("pass-3", passes[0].PassID)
	s.Equal("pass-2", passes[1].PassID)
}

func (s *ProjectionRepositoryTestSuite) TestPing() {
	s.NoError(s.repo.Ping(s.ctx))
}

func TestSavePassAssignsMissingID(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.SavePass(context.Background(), pass("", "2025-01-15", props.PassStatusFailed, morning)))

	latest, err := repo.LatestPass(context.Background(), "2025-01-15")
	require.NoError(t, err)
	assert.NotEmpty(t, latest.PassID)
}
