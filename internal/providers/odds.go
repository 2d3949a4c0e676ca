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

	"github.com/stitts-dev/nba-props/internal/props"
	"github.com/stitts-dev/nba-props/internal/resilience"
)

const oddsSportKey = "basketball_nba"

// oddsMarkets maps the-odds-api market keys to categories
var oddsMarkets = map[string]props.Category{
	"player_points":                  props.CategoryPoints,
	"player_assists":                 props.CategoryAssists,
	"player_rebounds":                props.CategoryRebounds,
	"player_points_rebounds_assists": props.CategoryComposite,
}

var oddsMarketOrder = []string{"player_points", "player_assists", "player_rebounds", "player_points_rebounds_assists"}

// OddsClient implements props.ReferenceLineSource against the-odds-api.com
type OddsClient struct {
	baseURL    string
	apiKey     string
	bookmakers string
	httpClient *http.Client
	breakers   *resilience.CircuitBreakerService
	logger     *logrus.Logger
}

// NewOddsClient creates a new odds client. An empty apiKey disables it.
func NewOddsClient(baseURL, apiKey string, timeout time.Duration, breakers *resilience.CircuitBreakerService, logger *logrus.Logger) *OddsClient {
	return &OddsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		bookmakers: "fanduel,draftkings",
		httpClient: &http.Client{Timeout: timeout},
		breakers:   breakers,
		logger:     logger,
	}
}

// Enabled reports whether an API key is configured
func (c *OddsClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// the-odds-api response structures
type oddsEventResponse struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

type oddsEventOddsResponse struct {
	ID         string          `json:"id"`
	Bookmakers []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point"`
}

func (c *OddsClient) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	params.Set("apiKey", c.apiKey)
	_, err := c.breakers.Execute(resilience.UpstreamOdds, func() (interface{}, error) {
		req, err := newGetRequest(ctx, fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode()), map[string]string{"Accept": "application/json"})
		if err != nil {
			return nil, err
		}
		body, err := doRequest(c.httpClient, req)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, dest); err != nil {
			return nil, fmt.Errorf("failed to decode odds response: %w", err)
		}
		return nil, nil
	})
	return err
}

// ListOddsEvents lists the upcoming NBA events known to the odds provider
func (c *OddsClient) ListOddsEvents(ctx context.Context) ([]props.OddsEvent, error) {
	if !c.Enabled() {
		return []props.OddsEvent{}, nil
	}

	var payload []oddsEventResponse
	if err := c.get(ctx, fmt.Sprintf("/sports/%s/events", oddsSportKey), url.Values{}, &payload); err != nil {
		return nil, err
	}

	events := make([]props.OddsEvent, 0, len(payload))
	for _, ev := range payload {
		if ev.ID == "" {
			continue
		}
		events = append(events, props.OddsEvent{
			ID:           ev.ID,
			HomeTeam:     ev.HomeTeam,
			AwayTeam:     ev.AwayTeam,
			CommenceTime: ev.CommenceTime,
		})
	}
	return events, nil
}

// ListReferenceLines fetches player prop lines for one odds event.
// The first line seen for a player and category wins.
func (c *OddsClient) ListReferenceLines(ctx context.Context, oddsEventID string) (props.ReferenceLines, error) {
	lines := make(props.ReferenceLines)
	if !c.Enabled() || oddsEventID == "" {
		return lines, nil
	}

	params := url.Values{}
	params.Set("regions", "us")
	params.Set("bookmakers", c.bookmakers)
	params.Set("markets", strings.Join(oddsMarketOrder, ","))
	params.Set("oddsFormat", "american")

	var payload oddsEventOddsResponse
	path := fmt.Sprintf("/sports/%s/events/%s/odds", oddsSportKey, url.PathEscape(oddsEventID))
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}

	for _, bookmaker := range payload.Bookmakers {
		for _, market := range bookmaker.Markets {
			category, ok := oddsMarkets[market.Key]
			if !ok {
				continue
			}
			for _, outcome := range market.Outcomes {
				if outcome.Description == "" || outcome.Point == nil {
					continue
				}
				byCategory, ok := lines[outcome.Description]
				if !ok {
					byCategory = make(map[props.Category]props.ReferenceLine)
					lines[outcome.Description] = byCategory
				}
				if _, seen := byCategory[category]; seen {
					continue
				}
				byCategory[category] = props.ReferenceLine{
					Line:  *outcome.Point,
					Label: outcome.Name + " " + strconv.FormatFloat(*outcome.Point, 'f', -1, 64),
				}
			}
		}
	}
	return lines, nil
}

// MatchOddsEvent finds the odds event for a game: the game's home full name
// contained in the odds home team, or its away name in the odds away team.
// The first match wins. Returns "" when nothing matches.
func MatchOddsEvent(game props.Event, events []props.OddsEvent) string {
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		if (game.HomeTeamName != "" && strings.Contains(ev.HomeTeam, game.HomeTeamName)) ||
			(game.AwayTeamName != "" && strings.Contains(ev.AwayTeam, game.AwayTeamName)) {
			return ev.ID
		}
	}
	return ""
}
