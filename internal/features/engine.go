package features

import (
	"math"

	"github.com/stitts-dev/nba-props/internal/gamelog"
	"github.com/stitts-dev/nba-props/internal/props"
)

// Stat keys. Recent-form keys carry the SuffixL10 or SuffixL5 suffix.
const (
	KeyPoints            = "PTS"
	KeyAssists           = "AST"
	KeyRebounds          = "REB"
	KeyThreesMade        = "FG3M"
	KeyMinutes           = "MIN"
	KeyThreePct          = "FG3_PCT"
	KeyFieldGoalAttempts = "FGA"
	KeyFreeThrowAttempts = "FTA"
	KeyTurnovers         = "TOV"
	KeyUsage             = "USG_PCT"

	KeyDefRating     = "DEF_RATING"
	KeyPace          = "PACE"
	KeyPointsAllowed = "PTS_ALLOWED"
	KeyDefenseRank   = "DVP_RANK"

	KeyHeadToHeadGames    = "H2H_GAMES"
	KeyHeadToHeadPoints   = "PTS_H2H"
	KeyHeadToHeadAssists  = "AST_H2H"
	KeyHeadToHeadRebounds = "REB_H2H"

	SuffixL10 = "_L10"
	SuffixL5  = "_L5"
)

// Recent-form window sizes
const (
	WindowL10 = 10
	WindowL5  = 5
)

// StatKeys lists the averaged keys in a fixed order
var StatKeys = []string{
	KeyPoints, KeyAssists, KeyRebounds, KeyThreesMade, KeyMinutes,
	KeyThreePct, KeyFieldGoalAttempts, KeyFreeThrowAttempts, KeyTurnovers, KeyUsage,
}

// Input is everything known about one player facing one opponent
type Input struct {
	// Logs is the merged series, most recent game first. May be nil.
	Logs       []props.GameLog
	HeadToHead []props.GameLog

	Team     string
	Opponent string
	// Position is a DVP position (PG, SG, SF, PF, C) or "N/A"
	Position string

	OpponentTable props.OpponentTable
	DefenseRanks  props.DefenseRanks
}

// Build derives the flat feature mapping for a player/opponent pair.
// It never fails: missing data yields zeros or league defaults.
func Build(in Input) props.Features {
	f := make(props.Features, len(StatKeys)*3+8)

	addAverages(f, in.Logs, "")
	addAverages(f, gamelog.Window(in.Logs, WindowL10), SuffixL10)
	addAverages(f, gamelog.Window(in.Logs, WindowL5), SuffixL5)

	opp := in.OpponentTable.Lookup(in.Opponent)
	f[KeyDefRating] = opp.DefRating
	f[KeyPace] = opp.Pace
	f[KeyPointsAllowed] = opp.PointsAllowed

	f[KeyDefenseRank] = in.DefenseRanks.Rank(in.Position, in.Opponent)

	f[KeyHeadToHeadGames] = float64(len(in.HeadToHead))
	f[KeyHeadToHeadPoints] = mean(in.HeadToHead, func(g props.GameLog) float64 { return g.Points })
	f[KeyHeadToHeadAssists] = mean(in.HeadToHead, func(g props.GameLog) float64 { return g.Assists })
	f[KeyHeadToHeadRebounds] = mean(in.HeadToHead, func(g props.GameLog) float64 { return g.Rebounds })

	return f
}

// Key returns the feature key for a category stat in a window suffix
func Key(c props.Category, suffix string) string {
	switch c {
	case props.CategoryPoints:
		return KeyPoints + suffix
	case props.CategoryAssists:
		return KeyAssists + suffix
	case props.CategoryRebounds:
		return KeyRebounds + suffix
	}
	return ""
}

func addAverages(f props.Features, rows []props.GameLog, suffix string) {
	f[KeyPoints+suffix] = mean(rows, func(g props.GameLog) float64 { return g.Points })
	f[KeyAssists+suffix] = mean(rows, func(g props.GameLog) float64 { return g.Assists })
	f[KeyRebounds+suffix] = mean(rows, func(g props.GameLog) float64 { return g.Rebounds })
	f[KeyThreesMade+suffix] = mean(rows, func(g props.GameLog) float64 { return g.ThreesMade })
	f[KeyMinutes+suffix] = mean(rows, func(g props.GameLog) float64 { return g.Minutes })
	f[KeyThreePct+suffix] = mean(rows, func(g props.GameLog) float64 { return g.ThreePct })
	f[KeyFieldGoalAttempts+suffix] = mean(rows, func(g props.GameLog) float64 { return g.FieldGoalAttempts })
	f[KeyFreeThrowAttempts+suffix] = mean(rows, func(g props.GameLog) float64 { return g.FreeThrowAttempts })
	f[KeyTurnovers+suffix] = mean(rows, func(g props.GameLog) float64 { return g.Turnovers })
	f[KeyUsage+suffix] = mean(rows, UsageRate)
}

// UsageRate approximates usage as (FGA + 0.44*FTA + TOV) / minutes.
// Zero minutes or any non-finite result gives 0.
func UsageRate(g props.GameLog) float64 {
	return finite((g.FieldGoalAttempts + 0.44*g.FreeThrowAttempts + g.Turnovers) / g.Minutes)
}

func mean(rows []props.GameLog, value func(props.GameLog) float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, row := range rows {
		sum += finite(value(row))
	}
	return finite(sum / float64(len(rows)))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
