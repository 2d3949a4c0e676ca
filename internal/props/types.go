package props

import (
	"time"
)

// Category is a projected statistical category
type Category string

const (
	CategoryPoints    Category = "pts"
	CategoryAssists   Category = "ast"
	CategoryRebounds  Category = "reb"
	CategoryComposite Category = "pra" // points + rebounds + assists
)

// Categories lists every supported category in processing order
var Categories = []Category{CategoryPoints, CategoryAssists, CategoryRebounds, CategoryComposite}

// Valid reports whether c is one of the supported categories
func (c Category) Valid() bool {
	switch c {
	case CategoryPoints, CategoryAssists, CategoryRebounds, CategoryComposite:
		return true
	}
	return false
}

// Event is a single scheduled game between two teams
type Event struct {
	ID           string `json:"game_id"`
	Date         string `json:"game_date"`
	HomeTeam     string `json:"home"`
	AwayTeam     string `json:"away"`
	HomeTeamName string `json:"home_team_name"`
	AwayTeamName string `json:"away_team_name"`
	Description  string `json:"game_description"`
}

// Opponent returns the other side of the game for team
func (e Event) Opponent(team string) string {
	if team == e.HomeTeam {
		return e.AwayTeam
	}
	return e.HomeTeam
}

// RosterEntry is a player listed on a team for the season
type RosterEntry struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Position string `json:"position,omitempty"`
}

// GameLog is one historical game played by a player
type GameLog struct {
	GameDate          time.Time `json:"game_date"`
	Matchup           string    `json:"matchup"`
	Minutes           float64   `json:"min"`
	Points            float64   `json:"pts"`
	Assists           float64   `json:"ast"`
	Rebounds          float64   `json:"reb"`
	ThreesMade        float64   `json:"fg3m"`
	ThreePct          float64   `json:"fg3_pct"`
	FieldGoalAttempts float64   `json:"fga"`
	FreeThrowAttempts float64   `json:"fta"`
	Turnovers         float64   `json:"tov"`
}

// Value returns the row's value for a category; unknown categories are 0
func (g GameLog) Value(c Category) float64 {
	switch c {
	case CategoryPoints:
		return g.Points
	case CategoryAssists:
		return g.Assists
	case CategoryRebounds:
		return g.Rebounds
	case CategoryComposite:
		return g.Points + g.Rebounds + g.Assists
	}
	return 0
}

// League-average fallbacks used when opponent context is missing
const (
	DefaultDefRating     = 110.0
	DefaultPace          = 100.0
	DefaultPointsAllowed = 110.0
	DefaultDefenseRank   = 15
)

// OpponentContext is a team's defensive profile for a season
type OpponentContext struct {
	DefRating     float64 `json:"def_rating"`
	Pace          float64 `json:"pace"`
	PointsAllowed float64 `json:"pts_allowed"`
}

// DefaultOpponentContext returns the league-average context
func DefaultOpponentContext() OpponentContext {
	return OpponentContext{
		DefRating:     DefaultDefRating,
		Pace:          DefaultPace,
		PointsAllowed: DefaultPointsAllowed,
	}
}

// NewOpponentContext derives points allowed from rating and pace
func NewOpponentContext(defRating, pace float64) OpponentContext {
	ctx := OpponentContext{DefRating: defRating, Pace: pace, PointsAllowed: DefaultPointsAllowed}
	if pace != 0 {
		ctx.PointsAllowed = defRating * pace / 100
	}
	return ctx
}

// OpponentTable maps team code to its opponent context
type OpponentTable map[string]OpponentContext

// Lookup returns the team's context or the league-average defaults
func (t OpponentTable) Lookup(team string) OpponentContext {
	if t == nil {
		return DefaultOpponentContext()
	}
	if ctx, ok := t[team]; ok {
		return ctx
	}
	return DefaultOpponentContext()
}

// DefenseRanks maps position -> team code -> stat column -> value.
// The "Rank" column holds the defense-vs-position rank.
type DefenseRanks map[string]map[string]map[string]float64

// Rank returns the defense-vs-position rank, 15 on any miss
func (d DefenseRanks) Rank(position, team string) float64 {
	if d == nil {
		return DefaultDefenseRank
	}
	byTeam, ok := d[position]
	if !ok {
		return DefaultDefenseRank
	}
	row, ok := byTeam[team]
	if !ok {
		return DefaultDefenseRank
	}
	rank, ok := row["Rank"]
	if !ok {
		return DefaultDefenseRank
	}
	return rank
}

// ReferenceLine is an externally supplied threshold for one player stat
type ReferenceLine struct {
	Line  float64 `json:"line"`
	Label string  `json:"label"`
}

// ReferenceLines maps player name -> category -> line
type ReferenceLines map[string]map[Category]ReferenceLine

// Lookup returns the line for a player's category or nil when absent
func (r ReferenceLines) Lookup(playerName string, c Category) *ReferenceLine {
	byCategory, ok := r[playerName]
	if !ok {
		return nil
	}
	line, ok := byCategory[c]
	if !ok {
		return nil
	}
	return &line
}

// OddsEvent is an event as listed by the odds provider
type OddsEvent struct {
	ID           string    `json:"id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

// Features is the flat numeric feature mapping for a player/opponent pair
type Features map[string]float64

// Get returns the value for key, 0 when missing
func (f Features) Get(key string) float64 {
	return f[key]
}

// HitRate holds over-line percentages for the recency windows
type HitRate struct {
	L5     int `json:"L5"`
	L10    int `json:"L10"`
	Season int `json:"Season"`
}

// ProjectionResult is the output for one player and category
type ProjectionResult struct {
	ID              string   `json:"id"`
	GameID          string   `json:"gameId"`
	GameDate        string   `json:"gameDate"`
	GameDescription string   `json:"gameDescription"`
	PlayerID        string   `json:"playerId"`
	PlayerName      string   `json:"playerName"`
	Team            string   `json:"team"`
	Opponent        string   `json:"opponent"`
	Category        Category `json:"stat"`
	Projection      float64  `json:"projection"`
	Line            *float64 `json:"bookLine"`
	LineLabel       string   `json:"overUnder,omitempty"`
	HitRate         HitRate  `json:"hitRate"`
}

// Pass statuses
const (
	PassStatusCompleted = "completed"
	PassStatusFailed    = "failed"
)

// PassResult is the outcome of one processing pass
type PassResult struct {
	PassID         string             `json:"pass_id"`
	Date           string             `json:"date"`
	Status         string             `json:"status"`
	Error          string             `json:"error,omitempty"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
	Events         int                `json:"events"`
	PlayersSkipped int                `json:"players_skipped"`
	Results        []ProjectionResult `json:"results"`
}
