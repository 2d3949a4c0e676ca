package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/stitts-dev/nba-props/internal/props"
	"github.com/stitts-dev/nba-props/internal/resilience"
)

var errUpstream = errors.New("connection reset by peer")

// fakeStats is an in-memory props.StatsSource
type fakeStats struct {
	mu sync.Mutex

	events      map[string][]props.Event
	eventErrs   map[string]error
	rosters     map[string][]props.RosterEntry
	rosterErrs  map[string]error
	logs        map[string][]props.GameLog // key: playerID/season
	logErrs     map[string]error
	opponents   props.OpponentTable
	opponentErr error
	positions   map[string]string

	calls map[string]int
}

func newFakeStats() *fakeStats {
	return &fakeStats{
		events:     map[string][]props.Event{},
		eventErrs:  map[string]error{},
		rosters:    map[string][]props.RosterEntry{},
		rosterErrs: map[string]error{},
		logs:       map[string][]props.GameLog{},
		logErrs:    map[string]error{},
		positions:  map[string]string{},
		calls:      map[string]int{},
	}
}

func (f *fakeStats) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeStats) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStats) ListEvents(ctx context.Context, day time.Time) ([]props.Event, error) {
	f.count("events")
	date := day.Format("2006-01-02")
	if err := f.eventErrs[date]; err != nil {
		return nil, err
	}
	return append([]props.Event{}, f.events[date]...), nil
}

func (f *fakeStats) ListRoster(ctx context.Context, team, season string) ([]props.RosterEntry, error) {
	f.count("roster")
	if err := f.rosterErrs[team]; err != nil {
		return nil, err
	}
	return f.rosters[team], nil
}

func (f *fakeStats) ListPlayerLogs(ctx context.Context, playerID, season string) ([]props.GameLog, error) {
	f.count("logs")
	key := playerID + "/" + season
	if err := f.logErrs[key]; err != nil {
		return nil, err
	}
	return f.logs[key], nil
}

func (f *fakeStats) ListOpponentContext(ctx context.Context, season string) (props.OpponentTable, error) {
	f.count("opponents")
	if f.opponentErr != nil {
		return nil, f.opponentErr
	}
	return f.opponents, nil
}

func (f *fakeStats) PlayerPosition(ctx context.Context, playerID string) (string, error) {
	f.count("position")
	position, ok := f.positions[playerID]
	if !ok {
		return "", errUpstream
	}
	return position, nil
}

// MockLineSource is a testify mock for props.ReferenceLineSource
type MockLineSource struct {
	mock.Mock
}

func (m *MockLineSource) ListOddsEvents(ctx context.Context) ([]props.OddsEvent, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]props.OddsEvent)
	return events, args.Error(1)
}

func (m *MockLineSource) ListReferenceLines(ctx context.Context, oddsEventID string) (props.ReferenceLines, error) {
	args := m.Called(ctx, oddsEventID)
	lines, _ := args.Get(0).(props.ReferenceLines)
	return lines, args.Error(1)
}

// MockRankSource is a testify mock for props.DefenseRankSource
type MockRankSource struct {
	mock.Mock
}

func (m *MockRankSource) ListDefenseVsPositionRanks(ctx context.Context) (props.DefenseRanks, error) {
	args := m.Called(ctx)
	ranks, _ := args.Get(0).(props.DefenseRanks)
	return ranks, args.Error(1)
}

// MockResultStore is a testify mock for ResultStore
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) SavePass(ctx context.Context, pass *props.PassResult) error {
	args := m.Called(ctx, pass)
	return args.Error(0)
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
}

func (r *recordingSleeper) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration{}, r.delays...)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testPolicy(sleeper *recordingSleeper) resilience.Policy {
	return resilience.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep:       sleeper.Sleep,
		Logger:      quietLogger(),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// logsWithPoints builds a most-recent-first series, one game every two days
func logsWithPoints(last time.Time, matchup string, points ...float64) []props.GameLog {
	logs := make([]props.GameLog, len(points))
	for i, p := range points {
		logs[i] = props.GameLog{
			GameDate: last.AddDate(0, 0, -2*i),
			Matchup:  matchup,
			Minutes:  32,
			Points:   p,
			Assists:  5,
			Rebounds: 6,
		}
	}
	return logs
}
