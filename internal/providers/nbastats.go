package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/stitts-dev/nba-props/internal/props"
	"github.com/stitts-dev/nba-props/internal/resilience"
)

// stats.nba.com rejects requests that do not look like they come from nba.com
var nbaStatsHeaders = map[string]string{
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Connection":      "keep-alive",
	"Origin":          "https://www.nba.com",
	"Referer":         "https://www.nba.com/",
	"User-Agent":      browserUserAgent,
}

// NBAStatsClient implements props.StatsSource against stats.nba.com.
// Every call is a single attempt; retries belong to the caller.
type NBAStatsClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breakers    *resilience.CircuitBreakerService
	cache       CacheProvider
	cacheTTL    time.Duration
	teams       *TeamDirectory
	logger      *logrus.Logger
	now         func() time.Time
}

// NBAStatsConfig holds the client settings
type NBAStatsConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
	CacheTTL    time.Duration
}

// NewNBAStatsClient creates a new stats.nba.com client
func NewNBAStatsClient(cfg NBAStatsConfig, teams *TeamDirectory, cache CacheProvider, breakers *resilience.CircuitBreakerService, logger *logrus.Logger) *NBAStatsClient {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &NBAStatsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(limit, 1),
		breakers:    breakers,
		cache:       cache,
		cacheTTL:    cfg.CacheTTL,
		teams:       teams,
		logger:      logger,
		now:         time.Now,
	}
}

// stats.nba.com response structures
type nbaStatsResponse struct {
	Resource   string        `json:"resource"`
	ResultSets []nbaStatsSet `json:"resultSets"`
}

type nbaStatsSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// resultSet returns the named table or an empty one
func (r *nbaStatsResponse) resultSet(name string) nbaStatsSet {
	for _, set := range r.ResultSets {
		if set.Name == name {
			return set
		}
	}
	return nbaStatsSet{Name: name}
}

// records converts the rows into header-keyed maps
func (s nbaStatsSet) records() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(s.RowSet))
	for _, row := range s.RowSet {
		record := make(map[string]interface{}, len(s.Headers))
		for i, header := range s.Headers {
			if i < len(row) {
				record[header] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

func (s nbaStatsSet) hasColumn(name string) bool {
	for _, header := range s.Headers {
		if header == name {
			return true
		}
	}
	return false
}

func (c *NBAStatsClient) get(ctx context.Context, endpoint string, params url.Values) (*nbaStatsResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breakers.Execute(resilience.UpstreamNBAStats, func() (interface{}, error) {
		req, err := newGetRequest(ctx, fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode()), nbaStatsHeaders)
		if err != nil {
			return nil, err
		}
		body, err := doRequest(c.httpClient, req)
		if err != nil {
			return nil, err
		}
		var payload nbaStatsResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
		return &payload, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*nbaStatsResponse), nil
}

// ListEvents fetches the scoreboard for one day
func (c *NBAStatsClient) ListEvents(ctx context.Context, day time.Time) ([]props.Event, error) {
	date := day.Format("2006-01-02")
	params := url.Values{}
	params.Set("GameDate", date)
	params.Set("LeagueID", "00")
	params.Set("DayOffset", "0")

	resp, err := c.get(ctx, "scoreboardv2", params)
	if err != nil {
		return nil, err
	}

	events := make([]props.Event, 0)
	for _, row := range resp.resultSet("GameHeader").records() {
		home, homeOK := c.teams.ByID(toInt(row["HOME_TEAM_ID"]))
		away, awayOK := c.teams.ByID(toInt(row["VISITOR_TEAM_ID"]))
		if !homeOK || !awayOK {
			c.logger.WithFields(logrus.Fields{
				"component": "nba_stats",
				"game_id":   toString(row["GAME_ID"]),
			}).Warn("Could not resolve teams for game, skipping")
			continue
		}
		events = append(events, props.Event{
			ID:           toString(row["GAME_ID"]),
			Date:         date,
			HomeTeam:     home.Abbreviation,
			AwayTeam:     away.Abbreviation,
			HomeTeamName: home.FullName,
			AwayTeamName: away.FullName,
			Description:  fmt.Sprintf("%s @ %s", away.Abbreviation, home.Abbreviation),
		})
	}
	return events, nil
}

// ListRoster fetches a team's roster. Unknown team codes give an empty roster.
func (c *NBAStatsClient) ListRoster(ctx context.Context, team, season string) ([]props.RosterEntry, error) {
	t, ok := c.teams.ByAbbreviation(team)
	if !ok {
		c.logger.WithField("team", team).Warn("Team not found for abbreviation")
		return []props.RosterEntry{}, nil
	}

	params := url.Values{}
	params.Set("TeamID", strconv.Itoa(t.ID))
	params.Set("Season", season)
	params.Set("LeagueID", "00")

	resp, err := c.get(ctx, "commonteamroster", params)
	if err != nil {
		return nil, err
	}

	roster := make([]props.RosterEntry, 0)
	for _, row := range resp.resultSet("CommonTeamRoster").records() {
		id := toString(row["PLAYER_ID"])
		if id == "" {
			continue
		}
		roster = append(roster, props.RosterEntry{
			PlayerID: id,
			Name:     toString(row["PLAYER"]),
			Team:     t.Abbreviation,
			Position: toString(row["POSITION"]),
		})
	}
	return roster, nil
}

// ListPlayerLogs fetches a player's regular-season game logs.
// Completed seasons are cached since they no longer change.
func (c *NBAStatsClient) ListPlayerLogs(ctx context.Context, playerID, season string) ([]props.GameLog, error) {
	cacheable := c.cache != nil && season != props.SeasonFor(c.now())
	cacheKey := fmt.Sprintf("nbastats:logs:%s:%s", playerID, season)

	if cacheable {
		var cached []props.GameLog
		if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("PlayerID", playerID)
	params.Set("Season", season)
	params.Set("SeasonType", "Regular Season")
	params.Set("LeagueID", "00")

	resp, err := c.get(ctx, "playergamelog", params)
	if err != nil {
		return nil, err
	}

	var logs []props.GameLog
	for _, row := range resp.resultSet("PlayerGameLog").records() {
		gameDate, err := parseGameDate(toString(row["GAME_DATE"]))
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"player_id": playerID,
				"season":    season,
				"error":     err.Error(),
			}).Warn("Skipping game log row with unreadable date")
			continue
		}
		logs = append(logs, props.GameLog{
			GameDate:          gameDate,
			Matchup:           toString(row["MATCHUP"]),
			Minutes:           toFloat(row["MIN"]),
			Points:            toFloat(row["PTS"]),
			Assists:           toFloat(row["AST"]),
			Rebounds:          toFloat(row["REB"]),
			ThreesMade:        toFloat(row["FG3M"]),
			ThreePct:          toFloat(row["FG3_PCT"]),
			FieldGoalAttempts: toFloat(row["FGA"]),
			FreeThrowAttempts: toFloat(row["FTA"]),
			Turnovers:         toFloat(row["TOV"]),
		})
	}

	if cacheable && len(logs) > 0 {
		if err := c.cache.SetSimple(cacheKey, logs, c.cacheTTL); err != nil {
			c.logger.WithError(err).Debug("Failed to cache player logs")
		}
	}

	return logs, nil
}

// ListOpponentContext fetches advanced team stats for every team in one call.
// A table without usable columns yields an empty map, not an error.
func (c *NBAStatsClient) ListOpponentContext(ctx context.Context, season string) (props.OpponentTable, error) {
	params := url.Values{}
	for k, v := range map[string]string{
		"MeasureType":    "Advanced",
		"PerMode":        "PerGame",
		"Season":         season,
		"SeasonType":     "Regular Season",
		"LeagueID":       "00",
		"LastNGames":     "0",
		"Month":          "0",
		"OpponentTeamID": "0",
		"PaceAdjust":     "N",
		"Period":         "0",
		"PlusMinus":      "N",
		"Rank":           "N",
	} {
		params.Set(k, v)
	}

	resp, err := c.get(ctx, "leaguedashteamstats", params)
	if err != nil {
		return nil, err
	}

	set := resp.resultSet("LeagueDashTeamStats")
	table := make(props.OpponentTable)
	if !set.hasColumn("E_DEF_RATING") && !set.hasColumn("DEF_RATING") {
		c.logger.WithField("season", season).Warn("Team stats table has no defensive rating column")
		return table, nil
	}

	for _, row := range set.records() {
		abbrev := toString(row["TEAM_ABBREVIATION"])
		if abbrev == "" {
			team, ok := c.teams.ByID(toInt(row["TEAM_ID"]))
			if !ok {
				continue
			}
			abbrev = team.Abbreviation
		}
		defRating := firstNumber(row, props.DefaultDefRating, "E_DEF_RATING", "DEF_RATING")
		pace := firstNumber(row, props.DefaultPace, "E_PACE", "PACE")
		table[abbrev] = props.NewOpponentContext(defRating, pace)
	}
	return table, nil
}

// PlayerPosition returns the raw position listed in the player's profile
func (c *NBAStatsClient) PlayerPosition(ctx context.Context, playerID string) (string, error) {
	cacheKey := fmt.Sprintf("nbastats:position:%s", playerID)
	if c.cache != nil {
		var cached string
		if err := c.cache.GetSimple(cacheKey, &cached); err == nil && cached != "" {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("PlayerID", playerID)
	params.Set("LeagueID", "00")

	resp, err := c.get(ctx, "commonplayerinfo", params)
	if err != nil {
		return "", err
	}

	rows := resp.resultSet("CommonPlayerInfo").records()
	if len(rows) == 0 {
		return "", nil
	}
	position := toString(rows[0]["POSITION"])

	if c.cache != nil && position != "" {
		if err := c.cache.SetSimple(cacheKey, position, c.cacheTTL); err != nil {
			c.logger.WithError(err).Debug("Failed to cache player position")
		}
	}
	return position, nil
}

var gameDateLayouts = []string{"Jan 02, 2006", "2006-01-02T15:04:05", "2006-01-02"}

// parseGameDate reads dates like "OCT 22, 2024"
func parseGameDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized game date %q", s)
}

func firstNumber(row map[string]interface{}, fallback float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			return toFloat(v)
		}
	}
	return fallback
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	}
	return 0
}

func toInt(v interface{}) int {
	return int(toFloat(v))
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
