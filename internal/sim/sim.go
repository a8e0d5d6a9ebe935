// Package sim runs predicted matches. A simulated match is seeded from a
// live fixture, plays out minute by minute at the requesting user's preferred
// speed, and funnels its updates through the same store and notification
// pipeline as real matches.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/notify"
	"github.com/skynolimit/topscores/internal/profile"
	"github.com/skynolimit/topscores/internal/sched"
	"github.com/skynolimit/topscores/internal/store"
)

// Predictor lifecycle states.
const (
	StatusStarted  = "started"
	StatusPaused   = "paused"
	StatusFinished = "finished"
)

const fullTimeMinute = 90

// Engine drives simulated matches. Simulations are keyed per device and
// match, so two users can predict the same fixture independently;
// re-initialising a running simulation replaces it.
type Engine struct {
	live      *store.Store
	predicted *store.Store
	pipeline  *notify.Pipeline
	profiles  *profile.Cache
	cfg       *config.Config
	timers    *sched.Timers
	logger    *slog.Logger

	// Tick loops run on the engine's own context, not the caller's: the
	// request that starts a simulation is long gone by the second minute.
	ctx    context.Context
	cancel context.CancelFunc

	rand func() float64
	now  func() time.Time
}

func NewEngine(live, predicted *store.Store, pipeline *notify.Pipeline, profiles *profile.Cache, cfg *config.Config, logger *slog.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		live:      live,
		predicted: predicted,
		pipeline:  pipeline,
		profiles:  profiles,
		cfg:       cfg,
		timers:    sched.New(),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		rand:      rand.Float64,
		now:       time.Now,
	}
}

// Store returns the store holding the simulated matches.
func (e *Engine) Store() *store.Store {
	return e.predicted
}

// Get returns one device's simulation of a match, or nil.
func (e *Engine) Get(deviceID, matchID string) *match.Match {
	return e.predicted.Get(simKey(deviceID, matchID))
}

// Init starts a simulation of the given live fixture for the given device.
// The seed is a deep copy of the live record, rewound to minute one with the
// scores cleared, so the simulation never touches the real match.
func (e *Engine) Init(ctx context.Context, deviceID, matchID string) error {
	if deviceID == "" || matchID == "" {
		return fmt.Errorf("device id and match id are required")
	}
	src := e.live.Get(matchID)
	if src == nil {
		return fmt.Errorf("match %s not found", matchID)
	}

	seed := src.Clone()
	seed.HomeTeam.Score = 0
	seed.AwayTeam.Score = 0
	seed.Time = 1
	seed.TimeLabel = match.TimeLabelForMinute(1)
	seed.StatusMessages = []string{seed.TimeLabel}
	seed.Started = true
	seed.Finished = false
	seed.Predictor = &match.PredictorDetails{
		DeviceID:    deviceID,
		Status:      StatusStarted,
		StartedTime: e.now().UTC(),
	}

	key := simKey(deviceID, matchID)
	e.logger.Info("Kicking off predicted match",
		"matchId", matchID, "deviceId", deviceID)
	events := e.predicted.ApplyUpdate(key, seed)
	e.pipeline.Process(ctx, key, events)

	e.scheduleTick(deviceID, key)
	return nil
}

// Pause freezes a running simulation. The time label switches to "P" so the
// app shows the match as paused. The status flip happens under the match's
// write lock, so a tick already in flight sees the pause and stands down.
func (e *Engine) Pause(ctx context.Context, deviceID, matchID string) error {
	key := simKey(deviceID, matchID)
	found := false
	events := e.predicted.Update(key, func(m *match.Match) bool {
		if m.Predictor == nil {
			return false
		}
		found = true
		m.Predictor.Status = StatusPaused
		m.TimeLabel = "P"
		return true
	})
	if !found {
		return fmt.Errorf("no simulation of match %s for device %s", matchID, deviceID)
	}
	e.timers.Cancel(key)
	e.pipeline.Process(ctx, key, events)
	return nil
}

// Resume restarts a paused simulation from where it left off.
func (e *Engine) Resume(ctx context.Context, deviceID, matchID string) error {
	key := simKey(deviceID, matchID)
	found := false
	events := e.predicted.Update(key, func(m *match.Match) bool {
		if m.Predictor == nil {
			return false
		}
		found = true
		m.Predictor.Status = StatusStarted
		m.TimeLabel = match.TimeLabelForMinute(m.Time)
		return true
	})
	if !found {
		return fmt.Errorf("no simulation of match %s for device %s", matchID, deviceID)
	}
	e.pipeline.Process(ctx, key, events)

	e.scheduleTick(deviceID, key)
	return nil
}

// RunCleanup sweeps out simulations started or finished too long ago, on the
// configured interval, until the context is cancelled.
func (e *Engine) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PredictorCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := e.predicted.RemoveFinishedOlderThan(e.cfg.PredictorMaxAge); n > 0 {
				e.logger.Info("Cleaned up old predicted matches", "removed", n)
			}
		}
	}
}

// Stop cancels all pending simulation ticks.
func (e *Engine) Stop() {
	e.cancel()
	e.timers.Stop()
}

func (e *Engine) scheduleTick(deviceID, key string) {
	interval := config.PredictorTickFor(e.speedPreference(deviceID))
	e.timers.Schedule(key, interval, func() {
		e.tick(deviceID, key)
	})
}

// tick advances one simulated minute: move the clock, roll the dice for each
// side, publish the update, and either finish or schedule the next minute.
// The status check and the mutation share the match's write lock, so a tick
// racing a pause leaves the paused state alone.
func (e *Engine) tick(deviceID, key string) {
	if e.ctx.Err() != nil {
		return
	}
	advanced := false
	finished := false
	events := e.predicted.Update(key, func(m *match.Match) bool {
		if m.Predictor == nil || m.Predictor.Status != StatusStarted {
			return false
		}
		advanced = true

		if m.Time < fullTimeMinute {
			m.Time++
			m.TimeLabel = match.TimeLabelForMinute(m.Time)
			m.StatusMessages = []string{m.TimeLabel}
		} else {
			m.Time = fullTimeMinute
			m.TimeLabel = "FT"
			m.StatusMessages = []string{"FT"}
		}
		m.HomeTeam.Score += e.goalIncrement(m.HomeTeam, m.AwayTeam)
		m.AwayTeam.Score += e.goalIncrement(m.AwayTeam, m.HomeTeam)

		finished = m.TimeLabel == "FT" || m.TimeLabel == "AET"
		if finished {
			e.finish(m)
		}
		return true
	})
	if !advanced {
		return
	}
	e.pipeline.Process(e.ctx, key, events)

	if !finished {
		e.scheduleTick(deviceID, key)
	}
}

func (e *Engine) finish(m *match.Match) {
	now := e.now().UTC()
	m.Finished = true
	m.Predictor.Status = StatusFinished
	m.Predictor.FinishedTime = &now

	// A drawn final goes to a shoot-out; the winner is a coin toss.
	if m.HomeTeam.Score == m.AwayTeam.Score && m.Competition.SubHeading == "Final" {
		winner := m.HomeTeam.Names.DisplayName
		if e.rand() < 0.5 {
			winner = m.AwayTeam.Names.DisplayName
		}
		m.StatusMessages = append(m.StatusMessages,
			"Predicted penalty shoot-out winner: "+winner)
	}
	e.logger.Info("Predicted match finished",
		"matchId", m.ID, "deviceId", m.Predictor.DeviceID,
		"score", m.ScoreLine())
}

// goalIncrement returns 0 or 1, weighted by the rating gap. A stronger side
// sees its per-minute chance boosted in proportion to how far the opponent's
// rating falls short of its own.
func (e *Engine) goalIncrement(team, opponent match.TeamSide) int {
	base := e.cfg.PredictorGoalChancePerMinute
	ratingPercentDiff := (100 - (opponent.Rating/team.Rating)*100) * e.cfg.PredictorRatingDifferential
	chance := base + (ratingPercentDiff/100)*base
	if e.rand() < chance {
		return 1
	}
	return 0
}

func (e *Engine) speedPreference(deviceID string) string {
	if p := e.profiles.Get(deviceID); p != nil {
		return p.PredictorSpeed
	}
	return ""
}

func simKey(deviceID, matchID string) string {
	return deviceID + ":" + matchID
}
