package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nba-props/internal/props"
	"github.com/stitts-dev/nba-props/internal/providers"
	"github.com/stitts-dev/nba-props/internal/resilience"
)

var (
	// ErrScheduleUnavailable means no day of the schedule window could be fetched
	ErrScheduleUnavailable = errors.New("schedule unavailable")
	// ErrOpponentContextUnavailable means the league team stats could not be fetched
	ErrOpponentContextUnavailable = errors.New("opponent context unavailable")
)

// Acquisition fetches everything a pass needs from the upstream sources.
// Stats calls go through the retry policy; the optional enrichments
// (defense ranks, reference lines) are single attempts that degrade to empty.
type Acquisition struct {
	stats  props.StatsSource
	ranks  props.DefenseRankSource
	lines  props.ReferenceLineSource
	policy resilience.Policy
	logger *logrus.Logger
}

// NewAcquisition wires the sources. ranks and lines may be nil.
func NewAcquisition(stats props.StatsSource, ranks props.DefenseRankSource, lines props.ReferenceLineSource, policy resilience.Policy, logger *logrus.Logger) *Acquisition {
	if policy.Logger == nil {
		policy.Logger = logger
	}
	return &Acquisition{
		stats:  stats,
		ranks:  ranks,
		lines:  lines,
		policy: policy,
		logger: logger,
	}
}

// FetchUpcomingEvents lists the games for windowDays days starting at from.
// A day that cannot be fetched is skipped. If every day fails the result is
// ErrScheduleUnavailable; an empty schedule is not an error.
func (a *Acquisition) FetchUpcomingEvents(ctx context.Context, from time.Time, windowDays int) ([]props.Event, error) {
	if windowDays < 1 {
		windowDays = 1
	}

	events := make([]props.Event, 0)
	fetchedDays := 0
	var lastErr error

	for offset := 0; offset < windowDays; offset++ {
		day := from.AddDate(0, 0, offset)
		date := day.Format("2006-01-02")

		dayEvents, err := resilience.Do(ctx, a.policy, fmt.Sprintf("ScoreboardV2(%s)", date), func(ctx context.Context) ([]props.Event, error) {
			return a.stats.ListEvents(ctx, day)
		})
		if err != nil {
			lastErr = err
			a.logger.WithFields(logrus.Fields{
				"component": "acquisition",
				"date":      date,
				"error":     err.Error(),
			}).Error("Skipping schedule day after all retries")
			continue
		}

		fetchedDays++
		if len(dayEvents) == 0 {
			a.logger.WithField("date", date).Info("No games found")
		}
		events = append(events, dayEvents...)
	}

	if fetchedDays == 0 {
		return nil, fmt.Errorf("%w: %v", ErrScheduleUnavailable, lastErr)
	}

	a.logger.WithFields(logrus.Fields{
		"component": "acquisition",
		"events":    len(events),
		"days":      windowDays,
	}).Info("Fetched upcoming games")

	return events, nil
}

// FetchRoster lists a team's players. An empty roster is valid.
func (a *Acquisition) FetchRoster(ctx context.Context, team, season string) ([]props.RosterEntry, error) {
	return resilience.Do(ctx, a.policy, fmt.Sprintf("CommonTeamRoster(%s)", team), func(ctx context.Context) ([]props.RosterEntry, error) {
		return a.stats.ListRoster(ctx, team, season)
	})
}

// FetchPlayerLogs lists a player's games for one season. No games is nil, nil.
func (a *Acquisition) FetchPlayerLogs(ctx context.Context, playerID, season string) ([]props.GameLog, error) {
	return resilience.Do(ctx, a.policy, fmt.Sprintf("PlayerGameLog(%s, %s)", playerID, season), func(ctx context.Context) ([]props.GameLog, error) {
		return a.stats.ListPlayerLogs(ctx, playerID, season)
	})
}

// FetchOpponentContext fetches the league-wide team table once per pass.
// A transport failure is ErrOpponentContextUnavailable; an empty table is not.
func (a *Acquisition) FetchOpponentContext(ctx context.Context, season string) (props.OpponentTable, error) {
	table, err := resilience.Do(ctx, a.policy, fmt.Sprintf("LeagueDashTeamStats(%s)", season), func(ctx context.Context) (props.OpponentTable, error) {
		return a.stats.ListOpponentContext(ctx, season)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpponentContextUnavailable, err)
	}
	if len(table) == 0 {
		a.logger.WithField("season", season).Warn("Team stats table is empty, opponent features fall back to defaults")
		return props.OpponentTable{}, nil
	}
	return table, nil
}

// FetchDefenseRanks returns the defense-vs-position table, empty on failure
func (a *Acquisition) FetchDefenseRanks(ctx context.Context) props.DefenseRanks {
	if a.ranks == nil {
		return props.DefenseRanks{}
	}
	ranks, err := a.ranks.ListDefenseVsPositionRanks(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("DVP scrape failed, ranks default to 15")
		return props.DefenseRanks{}
	}
	a.logger.WithField("positions", len(ranks)).Info("DVP scraping complete")
	return ranks
}

// FetchOddsEvents lists the odds provider's events, empty on failure
func (a *Acquisition) FetchOddsEvents(ctx context.Context) []props.OddsEvent {
	if a.lines == nil {
		return []props.OddsEvent{}
	}
	events, err := a.lines.ListOddsEvents(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Odds events fetch failed, continuing without reference lines")
		return []props.OddsEvent{}
	}
	return events
}

// FetchReferenceLines returns the lines for a game, empty when the game has
// no matching odds event or the fetch fails
func (a *Acquisition) FetchReferenceLines(ctx context.Context, event props.Event, oddsEvents []props.OddsEvent) props.ReferenceLines {
	if a.lines == nil {
		return props.ReferenceLines{}
	}
	oddsEventID := providers.MatchOddsEvent(event, oddsEvents)
	if oddsEventID == "" {
		return props.ReferenceLines{}
	}
	lines, err := a.lines.ListReferenceLines(ctx, oddsEventID)
	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"game_id":       event.ID,
			"odds_event_id": oddsEventID,
			"error":         err.Error(),
		}).Warn("Player props fetch failed")
		return props.ReferenceLines{}
	}
	return lines
}

// FetchPosition resolves the player's defense-vs-position bucket from the
// roster hint, falling back to the player profile. "N/A" when unknown.
func (a *Acquisition) FetchPosition(ctx context.Context, entry props.RosterEntry) string {
	if position := providers.NormalizePosition(entry.Position); position != "N/A" {
		return position
	}
	raw, err := resilience.Do(ctx, a.policy, fmt.Sprintf("CommonPlayerInfo(%s)", entry.PlayerID), func(ctx context.Context) (string, error) {
		return a.stats.PlayerPosition(ctx, entry.PlayerID)
	})
	if err != nil {
		return "N/A"
	}
	return providers.NormalizePosition(raw)
}
