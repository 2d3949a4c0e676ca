package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/nba-props/internal/props"
)

func newTestOddsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))

		switch r.URL.Path {
		case "/sports/basketball_nba/events":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"id": "evt-1", "home_team": "Boston Celtics", "away_team": "New York Knicks", "commence_time": "2025-01-15T00:30:00Z"},
				{"id": "", "home_team": "Miami Heat", "away_team": "Orlando Magic", "commence_time": "2025-01-15T00:30:00Z"},
			})
		case "/sports/basketball_nba/events/evt-1/odds":
			assert.Equal(t, "fanduel,draftkings", r.URL.Query().Get("bookmakers"))
			assert.Contains(t, r.URL.Query().Get("markets"), "player_points_rebounds_assists")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "evt-1",
				"bookmakers": []map[string]interface{}{
					{
						"key": "fanduel",
						"markets": []map[string]interface{}{
							{"key": "player_points", "outcomes": []map[string]interface{}{
								{"name": "Over", "description": "Jayson Tatum", "price": -110, "point": 27.5},
								{"name": "Under", "description": "Jayson Tatum", "price": -110, "point": 27.5},
							}},
							{"key": "player_points_rebounds_assists", "outcomes": []map[string]interface{}{
								{"name": "Over", "description": "Jayson Tatum", "price": -115, "point": 41.5},
							}},
							{"key": "player_threes", "outcomes": []map[string]interface{}{
								{"name": "Over", "description": "Jayson Tatum", "price": 100, "point": 3.5},
							}},
						},
					},
					{
						"key": "draftkings",
						"markets": []map[string]interface{}{
							{"key": "player_points", "outcomes": []map[string]interface{}{
								{"name": "Over", "description": "Jayson Tatum", "price": -120, "point": 28.5},
							}},
							{"key": "player_assists", "outcomes": []map[string]interface{}{
								{"name": "Over", "description": "Jalen Brunson", "price": -110, "point": 7},
								{"name": "Over", "description": "", "price": -110, "point": 1.5},
							}},
						},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOddsClient_ListOddsEvents(t *testing.T) {
	server := newTestOddsServer(t)
	client := NewOddsClient(server.URL, "test-key", time.Second, nil, testLogger())

	events, err := client.ListOddsEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, "Boston Celtics", events[0].HomeTeam)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 30, 0, 0, time.UTC), events[0].CommenceTime.UTC())
}

func TestOddsClient_ListReferenceLines(t *testing.T) {
	server := newTestOddsServer(t)
	client := NewOddsClient(server.URL, "test-key", time.Second, nil, testLogger())

	lines, err := client.ListReferenceLines(context.Background(), "evt-1")

	require.NoError(t, err)

	points := lines.Lookup("Jayson Tatum", props.CategoryPoints)
	require.NotNil(t, points)
	assert.Equal(t, 27.5, points.Line, "first line seen wins")
	assert.Equal(t, "Over 27.5", points.Label)

	pra := lines.Lookup("Jayson Tatum", props.CategoryComposite)
	require.NotNil(t, pra)
	assert.Equal(t, 41.5, pra.Line)

	assists := lines.Lookup("Jalen Brunson", props.CategoryAssists)
	require.NotNil(t, assists)
	assert.Equal(t, "Over 7", assists.Label)

	assert.Nil(t, lines.Lookup("Jayson Tatum", props.CategoryRebounds))
	assert.NotContains(t, lines, "")
}

func TestOddsClient_DisabledWithoutKey(t *testing.T) {
	client := NewOddsClient("http://127.0.0.1:1", "", time.Second, nil, testLogger())

	assert.False(t, client.Enabled())

	events, err := client.ListOddsEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)

	lines, err := client.ListReferenceLines(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMatchOddsEvent(t *testing.T) {
	game := props.Event{HomeTeamName: "Boston Celtics", AwayTeamName: "New York Knicks"}
	events := []props.OddsEvent{
		{ID: "evt-0", HomeTeam: "Miami Heat", AwayTeam: "Orlando Magic"},
		{ID: "evt-1", HomeTeam: "New York Knicks", AwayTeam: "New York Knicks"},
		{ID: "evt-2", HomeTeam: "Boston Celtics", AwayTeam: "New York Knicks"},
	}

	assert.Equal(t, "evt-1", MatchOddsEvent(game, events), "away name match is enough, first match wins")
	assert.Equal(t, "evt-2", MatchOddsEvent(game, events[2:]))
	assert.Equal(t, "", MatchOddsEvent(game, events[:1]))
	assert.Equal(t, "", MatchOddsEvent(game, nil))
}
