// Package maintenance runs periodic background tasks as Go tickers: pruning
// delivered notification envelopes past their TTL, and evicting match
// records that have slid out of the covered date window.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/skynolimit/topscores/internal/store"
)

// EnvelopePruner removes old notification envelopes. Both the in-memory and
// the Postgres envelope stores implement it.
type EnvelopePruner interface {
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PruneInterval time.Duration // Envelope pruning cadence
	EnvelopeTTL   time.Duration // Envelope age cutoff
	SweepInterval time.Duration // Match-window sweep cadence
	PastDays      int           // Covered window behind today
}

// DefaultConfig returns production defaults for the given envelope TTL and
// feed window.
func DefaultConfig(envelopeTTL time.Duration, pastDays int) Config {
	return Config{
		PruneInterval: 30 * time.Minute,
		EnvelopeTTL:   envelopeTTL,
		SweepInterval: 1 * time.Hour,
		PastDays:      pastDays,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, live *store.Store, pruner EnvelopePruner, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"prune", cfg.PruneInterval,
		"sweep", cfg.SweepInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Prune: drop envelopes older than the notification TTL
	if cfg.PruneInterval > 0 && pruner != nil {
		t := time.NewTicker(cfg.PruneInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() {
			n, err := pruner.Prune(ctx, cfg.EnvelopeTTL)
			if err != nil {
				logger.Error("Envelope prune failed", "error", err)
				return
			}
			if n > 0 {
				logger.Info("Pruned old envelopes", "removed", n)
			}
		})
	}

	// Sweep: evict matches dated before the covered window
	if cfg.SweepInterval > 0 {
		t := time.NewTicker(cfg.SweepInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() {
			cutoff := time.Now().AddDate(0, 0, -cfg.PastDays).Format("2006-01-02")
			live.RemoveDatedBefore(cutoff)
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
