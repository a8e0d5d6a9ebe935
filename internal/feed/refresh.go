package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/interest"
	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/notify"
	"github.com/skynolimit/topscores/internal/sched"
	"github.com/skynolimit/topscores/internal/store"
)

// Source is the fixtures fetch collaborator, implemented by Client.
type Source interface {
	FetchDate(ctx context.Context, date string) ([]*match.Match, error)
}

// DateParseInfo records the outcome of the most recent refresh of one date.
type DateParseInfo struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	DurationMs int64     `json:"durationMilliseconds"`
	Matches    int       `json:"matches"`
	Warn       string    `json:"warn,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Refresher keeps the live store up to date across the covered date window.
// Each date refreshes on its own cadence: frequent for today, slower for
// completed or distant dates. Rescheduling is cancel-then-replace per date,
// so overlapping refreshes of the same date cannot stack up.
type Refresher struct {
	source   Source
	store    *store.Store
	index    *interest.Index
	pipeline *notify.Pipeline
	cfg      *config.Config
	timers   *sched.Timers
	logger   *slog.Logger

	mu        sync.RWMutex
	parseInfo map[string]DateParseInfo

	now func() time.Time
}

func NewRefresher(source Source, s *store.Store, index *interest.Index, pipeline *notify.Pipeline, cfg *config.Config, logger *slog.Logger) *Refresher {
	return &Refresher{
		source:    source,
		store:     s,
		index:     index,
		pipeline:  pipeline,
		cfg:       cfg,
		timers:    sched.New(),
		logger:    logger,
		parseInfo: make(map[string]DateParseInfo),
		now:       time.Now,
	}
}

// Start performs the initial fetch across the whole date window, today
// first, then leaves every date self-rescheduling. The initial fetch runs in
// fixed-size parallel batches so a wide window does not open hundreds of
// connections at once.
func (r *Refresher) Start(ctx context.Context) {
	dates := r.Dates()
	r.logger.Info("Starting fixtures refresh",
		"dates", len(dates), "maxParallel", r.cfg.FeedMaxParallel)

	batch := r.cfg.FeedMaxParallel
	if batch < 1 {
		batch = 1
	}
	go func() {
		for i := 0; i < len(dates); i += batch {
			end := min(i+batch, len(dates))
			var wg sync.WaitGroup
			for _, date := range dates[i:end] {
				wg.Add(1)
				go func(date string) {
					defer wg.Done()
					r.RefreshDate(ctx, date)
				}(date)
			}
			wg.Wait()
			if ctx.Err() != nil {
				return
			}
		}
	}()
}

// Stop cancels all pending per-date refreshes.
func (r *Refresher) Stop() {
	r.timers.Stop()
}

// Dates returns the covered window in refresh-priority order: today first,
// then the rest by increasing distance, yesterday and tomorrow leading.
func (r *Refresher) Dates() []string {
	today := r.now()
	dates := []string{dateKey(today)}
	maxSpan := max(r.cfg.FeedPastDays, r.cfg.FeedFutureDays)
	for off := 1; off <= maxSpan; off++ {
		if off <= r.cfg.FeedPastDays {
			dates = append(dates, dateKey(today.AddDate(0, 0, -off)))
		}
		if off <= r.cfg.FeedFutureDays {
			dates = append(dates, dateKey(today.AddDate(0, 0, off)))
		}
	}
	return dates
}

// RefreshDate fetches one date, applies the results to the store and feeds
// any change events through the notification pipeline, then schedules the
// next refresh of that date.
func (r *Refresher) RefreshDate(ctx context.Context, date string) {
	info := DateParseInfo{Start: r.now().UTC()}

	matches, err := r.source.FetchDate(ctx, date)
	switch {
	case err == nil:
		info.Matches = len(matches)
		if len(matches) == 0 {
			r.logger.Warn("No matches found for date", "date", date)
		}
		r.apply(ctx, matches)
	case errors.Is(err, ErrNotFound):
		info.Warn = "No matches found (404)"
		r.logger.Warn("No matches found for date", "date", date, "error", err)
	default:
		info.Error = err.Error()
		r.logger.Error("Fixtures refresh failed", "date", date, "error", err)
	}

	info.End = r.now().UTC()
	info.DurationMs = info.End.Sub(info.Start).Milliseconds()
	r.mu.Lock()
	r.parseInfo[date] = info
	r.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	interval := r.cfg.RefreshIntervalFor(date, r.now())
	r.timers.Schedule(date, interval, func() {
		r.RefreshDate(ctx, date)
	})
}

// ParseInfo returns a snapshot of per-date refresh bookkeeping.
func (r *Refresher) ParseInfo() map[string]DateParseInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]DateParseInfo, len(r.parseInfo))
	for k, v := range r.parseInfo {
		out[k] = v
	}
	return out
}

func (r *Refresher) apply(ctx context.Context, matches []*match.Match) {
	for _, m := range matches {
		isNew := r.store.Get(m.ID) == nil
		events := r.store.ApplyUpdate(m.ID, m)
		if isNew {
			r.index.RecomputeForMatch(m.ID)
		}
		if len(events) > 0 {
			r.pipeline.Process(ctx, m.ID, events)
		}
	}
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
