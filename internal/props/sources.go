package props

import (
	"context"
	"time"
)

// ScheduleSource lists the games scheduled on a day
type ScheduleSource interface {
	ListEvents(ctx context.Context, day time.Time) ([]Event, error)
}

// RosterSource lists a team's players for a season. An empty roster is valid.
type RosterSource interface {
	ListRoster(ctx context.Context, team, season string) ([]RosterEntry, error)
}

// GameLogSource lists a player's games for a season. A nil slice means no logs.
type GameLogSource interface {
	ListPlayerLogs(ctx context.Context, playerID, season string) ([]GameLog, error)
}

// OpponentContextSource returns the league-wide opponent table in one call
type OpponentContextSource interface {
	ListOpponentContext(ctx context.Context, season string) (OpponentTable, error)
}

// PositionSource resolves a player's position
type PositionSource interface {
	PlayerPosition(ctx context.Context, playerID string) (string, error)
}

// DefenseRankSource returns defense-vs-position ranks
type DefenseRankSource interface {
	ListDefenseVsPositionRanks(ctx context.Context) (DefenseRanks, error)
}

// ReferenceLineSource supplies market lines for players
type ReferenceLineSource interface {
	ListOddsEvents(ctx context.Context) ([]OddsEvent, error)
	ListReferenceLines(ctx context.Context, oddsEventID string) (ReferenceLines, error)
}

// StatsSource is the full set of capabilities of the primary stats provider
type StatsSource interface {
	ScheduleSource
	RosterSource
	GameLogSource
	OpponentContextSource
	PositionSource
}
