package notify

import (
	"context"
	"log/slog"

	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/store"
)

// Pipeline connects a match store's change events to the dispatcher.
type Pipeline struct {
	store      *store.Store
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewPipeline(s *store.Store, d *Dispatcher, logger *slog.Logger) *Pipeline {
	return &Pipeline{store: s, dispatcher: d, logger: logger}
}

// Process classifies and fans out each change event for a match. Matches
// that have vanished from the store or been cancelled since the events were
// produced are skipped.
func (p *Pipeline) Process(ctx context.Context, matchID string, events []match.ChangeEvent) {
	if len(events) == 0 {
		return
	}
	m := p.store.Get(matchID)
	if m == nil || m.Cancelled {
		return
	}
	for _, ev := range events {
		msg := Classify(m, ev)
		if msg == nil {
			continue
		}
		p.logger.Debug("Notification classified",
			"matchId", matchID, "path", ev.Path, "type", msg.Type)
		p.dispatcher.Dispatch(ctx, m, *msg)
	}
}
