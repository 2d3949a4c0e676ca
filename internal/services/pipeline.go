package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/stitts-dev/nba-props/internal/features"
	"github.com/stitts-dev/nba-props/internal/gamelog"
	"github.com/stitts-dev/nba-props/internal/projection"
	"github.com/stitts-dev/nba-props/internal/props"
	"github.com/stitts-dev/nba-props/pkg/logger"
)

// ResultStore persists finished passes. Saving a completed pass replaces
// the results stored for its date; a failed pass leaves them in place.
type ResultStore interface {
	SavePass(ctx context.Context, pass *props.PassResult) error
}

// PipelineConfig controls a pass
type PipelineConfig struct {
	WindowDays      int
	EventCooldown   time.Duration
	SingleEventMode bool
}

// ProjectionPipeline runs processing passes: schedule, rosters, logs,
// features, projections and hit rates, one event at a time.
type ProjectionPipeline struct {
	acquisition *Acquisition
	store       ResultStore
	hub         *WebSocketHub
	metrics     *Metrics
	cfg         PipelineConfig
	logger      *logrus.Logger

	sleep func(time.Duration)
	now   func() time.Time

	group singleflight.Group
	// runMu admits one pass at a time across all dates
	runMu    sync.Mutex
	mu       sync.Mutex
	inFlight map[string]int // callers waiting on or running a date
}

// NewProjectionPipeline creates a pipeline. store, hub and metrics may be nil.
func NewProjectionPipeline(acquisition *Acquisition, store ResultStore, hub *WebSocketHub, metrics *Metrics, cfg PipelineConfig, logger *logrus.Logger) *ProjectionPipeline {
	return &ProjectionPipeline{
		acquisition: acquisition,
		store:       store,
		hub:         hub,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
		sleep:       time.Sleep,
		now:         time.Now,
		inFlight:    make(map[string]int),
	}
}

type passState struct {
	pass         *props.PassResult
	season       string
	priorSeason  string
	opponents    props.OpponentTable
	defenseRanks props.DefenseRanks
	oddsEvents   []props.OddsEvent
	log          *logrus.Entry
}

// Run executes one pass for the schedule window starting at from.
// Only an unavailable schedule, unavailable opponent context or a failed save
// abort the pass; any other failure skips the affected team or player.
func (p *ProjectionPipeline) Run(ctx context.Context, from time.Time) (*props.PassResult, error) {
	started := p.now()
	pass := &props.PassResult{
		PassID:    uuid.New().String(),
		Date:      from.Format("2006-01-02"),
		StartedAt: started,
		Results:   make([]props.ProjectionResult, 0),
	}

	state, err := p.newPassState(pass, from)
	if err != nil {
		return p.fail(ctx, pass, err)
	}
	state.log.WithField("season", state.season).Info("Starting projection pass")

	events, err := p.acquisition.FetchUpcomingEvents(ctx, from, p.cfg.WindowDays)
	if err != nil {
		return p.fail(ctx, pass, fmt.Errorf("fetch schedule: %w", err))
	}
	pass.Events = len(events)

	if len(events) > 0 {
		state.opponents, err = p.acquisition.FetchOpponentContext(ctx, state.season)
		if err != nil {
			return p.fail(ctx, pass, fmt.Errorf("fetch opponent context: %w", err))
		}
		state.defenseRanks = p.acquisition.FetchDefenseRanks(ctx)
		state.oddsEvents = p.acquisition.FetchOddsEvents(ctx)
	} else {
		state.log.Info("No upcoming games found")
	}

	if p.cfg.SingleEventMode && len(events) > 1 {
		state.log.Info("Single event mode, processing the first game only")
		events = events[:1]
	}

	for i, event := range events {
		if err := ctx.Err(); err != nil {
			return p.fail(ctx, pass, fmt.Errorf("pass cancelled: %w", err))
		}

		state.log.WithFields(logrus.Fields{
			"game_id":    event.ID,
			"game":       event.Description,
			"game_num":   i + 1,
			"game_total": len(events),
		}).Info("Processing game")

		p.processEvent(ctx, state, event)

		if i < len(events)-1 && p.cfg.EventCooldown > 0 {
			state.log.WithField("cooldown", p.cfg.EventCooldown).Debug("Cooling down before next game")
			p.sleep(p.cfg.EventCooldown)
		}
	}

	pass.Status = props.PassStatusCompleted
	pass.FinishedAt = p.now()

	if p.store != nil {
		if err := p.store.SavePass(ctx, pass); err != nil {
			return p.fail(ctx, pass, fmt.Errorf("save pass: %w", err))
		}
	}

	p.finish(pass)
	state.log.WithFields(logrus.Fields{
		"results":         len(pass.Results),
		"players_skipped": pass.PlayersSkipped,
		"duration":        pass.FinishedAt.Sub(pass.StartedAt).String(),
	}).Info("Projection pass complete")

	return pass, nil
}

func (p *ProjectionPipeline) newPassState(pass *props.PassResult, from time.Time) (*passState, error) {
	season := props.SeasonFor(from)
	prior, err := props.PriorSeason(season)
	if err != nil {
		return nil, err
	}
	return &passState{
		pass:        pass,
		season:      season,
		priorSeason: prior,
		log:         p.logger.WithFields(logger.PassFields(pass.PassID, pass.Date)),
	}, nil
}

func (p *ProjectionPipeline) processEvent(ctx context.Context, state *passState, event props.Event) {
	lines := p.acquisition.FetchReferenceLines(ctx, event, state.oddsEvents)

	for _, team := range []string{event.HomeTeam, event.AwayTeam} {
		if team == "" {
			continue
		}
		opponent := event.Opponent(team)

		roster, err := p.acquisition.FetchRoster(ctx, team, state.season)
		if err != nil {
			state.log.WithFields(logrus.Fields{
				"team":  team,
				"error": err.Error(),
			}).Warn("Roster fetch failed, skipping team")
			continue
		}
		if len(roster) == 0 {
			state.log.WithField("team", team).Warn("Empty roster, skipping team")
			continue
		}

		for _, entry := range roster {
			entry.Team = team
			results, ok := p.processPlayer(ctx, state, event, entry, opponent, lines)
			if !ok {
				state.pass.PlayersSkipped++
				continue
			}
			state.pass.Results = append(state.pass.Results, results...)
		}
	}
}

func (p *ProjectionPipeline) processPlayer(ctx context.Context, state *passState, event props.Event, entry props.RosterEntry, opponent string, lines props.ReferenceLines) ([]props.ProjectionResult, bool) {
	log := state.log.WithFields(logger.PlayerFields(entry.PlayerID, entry.Name)).WithFields(logrus.Fields{
		"team":     entry.Team,
		"opponent": opponent,
	})

	current, currentErr := p.acquisition.FetchPlayerLogs(ctx, entry.PlayerID, state.season)
	prior, priorErr := p.acquisition.FetchPlayerLogs(ctx, entry.PlayerID, state.priorSeason)
	if currentErr != nil && priorErr != nil {
		log.WithError(currentErr).Warn("Game log fetch failed, skipping player")
		return nil, false
	}
	if currentErr != nil {
		log.WithError(currentErr).WithField("season", state.season).Warn("Current season logs unavailable, projecting from prior season only")
	}
	if priorErr != nil {
		log.WithError(priorErr).WithField("season", state.priorSeason).Warn("Prior season logs unavailable, projecting from current season only")
	}

	logs, ok := gamelog.MergeSeasons(current, prior)
	if !ok {
		log.Debug("No game logs, skipping player")
		return nil, false
	}

	f := features.Build(features.Input{
		Logs:          logs,
		HeadToHead:    gamelog.FilterHeadToHead(logs, opponent),
		Team:          entry.Team,
		Opponent:      opponent,
		Position:      p.acquisition.FetchPosition(ctx, entry),
		OpponentTable: state.opponents,
		DefenseRanks:  state.defenseRanks,
	})

	results := make([]props.ProjectionResult, 0, len(props.Categories))
	for _, category := range props.Categories {
		value := projection.Project(f, category)
		if value == 0 {
			continue
		}

		line := lines.Lookup(entry.Name, category)
		result := props.ProjectionResult{
			ID:              fmt.Sprintf("%s-%s", entry.PlayerID, category),
			GameID:          event.ID,
			GameDate:        event.Date,
			GameDescription: event.Description,
			PlayerID:        entry.PlayerID,
			PlayerName:      entry.Name,
			Team:            entry.Team,
			Opponent:        opponent,
			Category:        category,
			Projection:      projection.Round2(value),
			HitRate:         projection.HitRates(logs, category, line),
		}
		if line != nil {
			bookLine := line.Line
			result.Line = &bookLine
			result.LineLabel = line.Label
		}
		results = append(results, result)
	}

	log.WithField("results", len(results)).Debug("Player projected")
	return results, true
}

func (p *ProjectionPipeline) fail(ctx context.Context, pass *props.PassResult, cause error) (*props.PassResult, error) {
	pass.Status = props.PassStatusFailed
	pass.Error = cause.Error()
	pass.FinishedAt = p.now()

	log := p.logger.WithFields(logger.PassFields(pass.PassID, pass.Date))
	log.WithError(cause).Error("Projection pass failed")

	if p.store != nil {
		// record the failure even when ctx was cancelled
		if err := p.store.SavePass(context.WithoutCancel(ctx), pass); err != nil {
			log.WithError(err).Warn("Failed to record failed pass")
		}
	}

	p.finish(pass)
	return nil, cause
}

func (p *ProjectionPipeline) finish(pass *props.PassResult) {
	p.metrics.ObservePass(pass.Status, pass.FinishedAt.Sub(pass.StartedAt), len(pass.Results), pass.PlayersSkipped)

	summary := PassSummary{
		PassID:         pass.PassID,
		Date:           pass.Date,
		Status:         pass.Status,
		Error:          pass.Error,
		Events:         pass.Events,
		Results:        len(pass.Results),
		PlayersSkipped: pass.PlayersSkipped,
		FinishedAt:     pass.FinishedAt,
	}
	if err := p.hub.BroadcastToTopic(TopicProjections, "pass_"+pass.Status, summary); err != nil {
		p.logger.WithError(err).Warn("Failed to broadcast pass summary")
	}
}

// PassSummary is the websocket payload sent after every pass
type PassSummary struct {
	PassID         string    `json:"pass_id"`
	Date           string    `json:"date"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	Events         int       `json:"events"`
	Results        int       `json:"results"`
	PlayersSkipped int       `json:"players_skipped"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Trigger runs a pass for from's date. Callers for a date that is already
// running wait for and share that pass's outcome; passes for other dates
// queue behind it.
func (p *ProjectionPipeline) Trigger(ctx context.Context, from time.Time) (*props.PassResult, bool, error) {
	key := from.Format("2006-01-02")
	p.acquire(key)
	defer p.release(key)
	return p.trigger(ctx, key, from)
}

func (p *ProjectionPipeline) trigger(ctx context.Context, key string, from time.Time) (*props.PassResult, bool, error) {
	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		p.runMu.Lock()
		defer p.runMu.Unlock()
		return p.Run(ctx, from)
	})
	if err != nil {
		return nil, shared, err
	}
	return v.(*props.PassResult), shared, nil
}

// TriggerAsync starts Trigger in the background and reports whether a pass
// for the date was already queued or running
func (p *ProjectionPipeline) TriggerAsync(ctx context.Context, from time.Time) bool {
	key := from.Format("2006-01-02")
	alreadyRunning := p.acquire(key)
	go func() {
		defer p.release(key)
		if _, _, err := p.trigger(ctx, key, from); err != nil {
			p.logger.WithError(err).WithField("date", key).Error("Triggered pass failed")
		}
	}()
	return alreadyRunning
}

// InFlight reports whether a pass for date (YYYY-MM-DD) is queued or running
func (p *ProjectionPipeline) InFlight(date string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight[date] > 0
}

// acquire registers a caller for date and reports whether another caller
// was already registered
func (p *ProjectionPipeline) acquire(date string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	running := p.inFlight[date] > 0
	p.inFlight[date]++
	return running
}

func (p *ProjectionPipeline) release(date string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight[date]--
	if p.inFlight[date] <= 0 {
		delete(p.inFlight, date)
	}
}
